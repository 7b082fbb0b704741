package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ltiusagestore "github.com/dalemusser/ltiusage/internal/app/store/ltiusage"
	"github.com/dalemusser/ltiusage/internal/domain/models"
)

// Activities returns n visible activities of typeID, numbered from
// firstCMID, spread over courses "Course 01".."Course 05".
func Activities(typeID, firstCMID int64, n int) []models.LTIActivity {
	out := make([]models.LTIActivity, 0, n)
	for i := 0; i < n; i++ {
		course := int64(i%5 + 1)
		out = append(out, models.LTIActivity{
			CourseModuleID: firstCMID + int64(i),
			CourseID:       course,
			CourseName:     fmt.Sprintf("Course %02d", course),
			Name:           fmt.Sprintf("Activity %03d", i),
			TypeID:         typeID,
			Visible:        true,
		})
	}
	return out
}

// MemorySource is an in-memory LTI activity store for handler and client
// tests. It implements the report's page source and activity deleter.
type MemorySource struct {
	mu    sync.Mutex
	acts  []models.LTIActivity
	names map[int64]string

	// Err, when set, is returned by every read.
	Err error
}

// NewMemorySource returns a source holding acts and tool-type names.
func NewMemorySource(acts []models.LTIActivity, names map[int64]string) *MemorySource {
	if names == nil {
		names = map[int64]string{}
	}
	return &MemorySource{acts: append([]models.LTIActivity(nil), acts...), names: names}
}

// ListByType returns the activities of typeID.
func (m *MemorySource) ListByType(_ context.Context, typeID int64) ([]models.LTIActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.LTIActivity
	for _, a := range m.acts {
		if a.TypeID == typeID {
			out = append(out, a)
		}
	}
	return out, nil
}

// TypeIDs returns the distinct type ids, ascending.
func (m *MemorySource) TypeIDs(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	seen := map[int64]bool{}
	var ids []int64
	for _, a := range m.acts {
		if !seen[a.TypeID] {
			seen[a.TypeID] = true
			ids = append(ids, a.TypeID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// TypeName returns the name of a tool type.
func (m *MemorySource) TypeName(_ context.Context, typeID int64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	n, ok := m.names[typeID]
	return n, ok, nil
}

// TypeNames returns a copy of all tool-type names.
func (m *MemorySource) TypeNames(context.Context) (map[int64]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[int64]string, len(m.names))
	for k, v := range m.names {
		out[k] = v
	}
	return out, nil
}

// Delete removes one activity, or returns ltiusagestore.ErrNotFound.
func (m *MemorySource) Delete(_ context.Context, cmid int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.acts {
		if a.CourseModuleID == cmid {
			m.acts = append(m.acts[:i], m.acts[i+1:]...)
			return nil
		}
	}
	return ltiusagestore.ErrNotFound
}

// Len returns the number of activities held.
func (m *MemorySource) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.acts)
}
