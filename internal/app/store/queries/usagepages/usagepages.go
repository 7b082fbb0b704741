// Package usagepages answers "page N of the activities that use tool type
// G" for the LTI usage report.
//
// Every page is computed from a fresh read of the whole group: rows are
// fetched in one pass, sorted, counted and sliced here, so the initial
// full render, the HTMX fragment and the JSON service all agree on which
// row lands on which page.
package usagepages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dalemusser/ltiusage/internal/app/system/authz"
	"github.com/dalemusser/ltiusage/internal/app/system/htmlsanitize"
	"github.com/dalemusser/ltiusage/internal/app/system/pagerwidget"
	"github.com/dalemusser/ltiusage/internal/app/system/paging"
	"github.com/dalemusser/ltiusage/internal/domain/models"
	"golang.org/x/text/unicode/norm"
)

// ManualGroupID is the group of activities configured without a tool type.
const ManualGroupID int64 = 0

// ManualGroupName names ManualGroupID and any tool type without a record.
const ManualGroupName = "Custom/Manual LTI"

// ErrAccessDenied is returned when the caller may not view the report.
var ErrAccessDenied = errors.New("usagepages: access denied")

// Source is the backing store the service reads from.
type Source interface {
	ListByType(ctx context.Context, typeID int64) ([]models.LTIActivity, error)
	TypeIDs(ctx context.Context) ([]int64, error)
	TypeName(ctx context.Context, typeID int64) (string, bool, error)
	TypeNames(ctx context.Context) (map[int64]string, error)
}

// Caller is the live identity a page is computed for. Capabilities are
// derived from Role on every call.
type Caller struct {
	UserID string
	Role   string
}

// CanView reports whether the caller may read the report.
func (c Caller) CanView() bool { return authz.Can(c.Role, authz.CapView) }

// CanDelete reports whether the caller may delete activities.
func (c Caller) CanDelete() bool { return authz.Can(c.Role, authz.CapDelete) }

// PageRequest selects one page of one group. Page is zero-based; a
// non-positive PageSize means paging.PageSize.
type PageRequest struct {
	GroupID  int64 `json:"groupId"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Row is one activity as shown in the report.
type Row struct {
	Course      string `json:"course"`
	Name        string `json:"name"`
	Visible     int    `json:"visible"`
	Link        string `json:"link"`
	DeleteLink  string `json:"deletelink"`
	ShowDelete  bool   `json:"showDelete"`
	ActivityRef int64  `json:"activityRef"`
}

// PageResult is one page of a group plus the metadata needed to draw its
// pager. Page, Prev and Next are zero-based; CurrentPage is 1-based.
type PageResult struct {
	GroupID     int64  `json:"groupId"`
	GroupName   string `json:"groupName"`
	Rows        []Row  `json:"rows"`
	Total       int    `json:"total"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
	CanDelete   bool   `json:"candelete"`
	HasPrev     bool   `json:"hasPrev"`
	HasNext     bool   `json:"hasNext"`
	Prev        int    `json:"prev"`
	Next        int    `json:"next"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

// PagerMeta returns the metadata the pager for this page is built from.
func (p PageResult) PagerMeta() pagerwidget.Meta {
	return pagerwidget.Meta{
		GroupID:    p.GroupID,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		HasPrev:    p.HasPrev,
		HasNext:    p.HasNext,
		Prev:       p.Prev,
		Next:       p.Next,
	}
}

// Links builds the per-row URLs.
type Links struct {
	// ViewBase is the LMS root the "open" link points into.
	ViewBase string
	// DeletePath is the report's delete route with a %d for the activity ref.
	DeletePath string
}

// DefaultDeletePath is the delete route served by the report.
const DefaultDeletePath = "/ltiusage/activities/%d/delete"

// View returns the link that opens an activity.
func (l Links) View(cmid int64) string {
	return strings.TrimRight(l.ViewBase, "/") + "/mod/lti/view.php?id=" + strconv.FormatInt(cmid, 10)
}

// Delete returns the link that deletes an activity.
func (l Links) Delete(cmid int64) string {
	p := l.DeletePath
	if p == "" {
		p = DefaultDeletePath
	}
	return fmt.Sprintf(p, cmid)
}

// Service computes report pages.
type Service struct {
	src   Source
	links Links
}

// New creates a Service reading from src.
func New(src Source, links Links) *Service {
	return &Service{src: src, links: links}
}

// GetPage returns one page of one group. Out-of-range pages are clamped
// to the nearest valid page. A group with no activities yields a valid
// empty result with one page.
func (s *Service) GetPage(ctx context.Context, req PageRequest, caller Caller) (PageResult, error) {
	if !caller.CanView() {
		return PageResult{}, ErrAccessDenied
	}

	name, err := s.groupName(ctx, req.GroupID)
	if err != nil {
		return PageResult{}, err
	}
	return s.page(ctx, req, name, caller.CanDelete())
}

// Listing returns the requested page of every group that has activities,
// ordered by group id. pages maps a group id to its zero-based page; groups
// missing from it start on page 0.
func (s *Service) Listing(ctx context.Context, caller Caller, pages map[int64]int) ([]PageResult, error) {
	if !caller.CanView() {
		return nil, ErrAccessDenied
	}

	ids, err := s.src.TypeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("usagepages: list groups: %w", err)
	}
	names, err := s.src.TypeNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("usagepages: type names: %w", err)
	}

	canDelete := caller.CanDelete()
	out := make([]PageResult, 0, len(ids))
	for _, id := range ids {
		req := PageRequest{GroupID: id, Page: pages[id], PageSize: paging.PageSize}
		res, err := s.page(ctx, req, displayName(id, names[id]), canDelete)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Service) page(ctx context.Context, req PageRequest, groupName string, canDelete bool) (PageResult, error) {
	acts, err := s.src.ListByType(ctx, req.GroupID)
	if err != nil {
		return PageResult{}, fmt.Errorf("usagepages: list activities: %w", err)
	}

	rows := s.rows(acts, canDelete)
	w := paging.Compute(len(rows), req.Page, req.PageSize)

	return PageResult{
		GroupID:     req.GroupID,
		GroupName:   groupName,
		Rows:        paging.Slice(rows, w),
		Total:       w.Total,
		Page:        w.Page,
		PageSize:    w.PageSize,
		CanDelete:   canDelete,
		HasPrev:     w.HasPrev,
		HasNext:     w.HasNext,
		Prev:        w.Prev,
		Next:        w.Next,
		TotalPages:  w.TotalPages,
		CurrentPage: w.CurrentPage(),
	}, nil
}

func (s *Service) groupName(ctx context.Context, id int64) (string, error) {
	if id == ManualGroupID {
		return ManualGroupName, nil
	}
	name, ok, err := s.src.TypeName(ctx, id)
	if err != nil {
		return "", fmt.Errorf("usagepages: type name: %w", err)
	}
	if !ok {
		return ManualGroupName, nil
	}
	return displayName(id, name), nil
}

func displayName(id int64, name string) string {
	name = htmlsanitize.Label(name)
	if id == ManualGroupID || name == "" {
		return ManualGroupName
	}
	return name
}

// rows turns activities into sorted report rows. The slice is always
// non-nil so an empty group serializes as [].
func (s *Service) rows(acts []models.LTIActivity, canDelete bool) []Row {
	type keyed struct {
		row          Row
		course, name string
	}
	ks := make([]keyed, 0, len(acts))
	for _, a := range acts {
		r := Row{
			Course:      htmlsanitize.Label(a.CourseName),
			Name:        htmlsanitize.Label(a.Name),
			Link:        s.links.View(a.CourseModuleID),
			ActivityRef: a.CourseModuleID,
		}
		if a.Visible {
			r.Visible = 1
		}
		if canDelete {
			r.ShowDelete = true
			r.DeleteLink = s.links.Delete(a.CourseModuleID)
		}
		ks = append(ks, keyed{row: r, course: norm.NFC.String(r.Course), name: norm.NFC.String(r.Name)})
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.course != b.course {
			return a.course < b.course
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.row.ActivityRef < b.row.ActivityRef
	})

	out := make([]Row, len(ks))
	for i, k := range ks {
		out[i] = k.row
	}
	return out
}
