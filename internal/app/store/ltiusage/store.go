// internal/app/store/ltiusage/store.go
package ltiusagestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dalemusser/ltiusage/internal/app/system/indexes"
	"github.com/dalemusser/ltiusage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Delete when no activity has the given id.
var ErrNotFound = errors.New("lti activity not found")

// Store reads LTI activities and tool types.
type Store struct {
	activities *mongo.Collection
	types      *mongo.Collection
}

// New creates a Store over the lti_activities and lti_types collections.
func New(db *mongo.Database) *Store {
	return &Store{
		activities: db.Collection("lti_activities"),
		types:      db.Collection("lti_types"),
	}
}

// EnsureIndexes creates the indexes the report queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.activities, []mongo.IndexModel{
		// Activities of one tool type (one table group)
		{
			Keys:    bson.D{{Key: "type_id", Value: 1}, {Key: "course_name", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_lti_activities_type"),
		},
		// Activities of one course
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}},
			Options: options.Index().SetName("idx_lti_activities_course"),
		},
	}, zap.L())
}

// ListByType returns every activity configured with typeID, in no
// particular order. Callers sort.
func (s *Store) ListByType(ctx context.Context, typeID int64) ([]models.LTIActivity, error) {
	return s.find(ctx, bson.M{"type_id": typeID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.LTIActivity, error) {
	cur, err := s.activities.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LTIActivity
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TypeIDs returns the distinct tool-type ids that have at least one
// activity, ascending.
func (s *Store) TypeIDs(ctx context.Context) ([]int64, error) {
	raw, err := s.activities.Distinct(ctx, "type_id", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case int64:
			ids = append(ids, n)
		case int32:
			ids = append(ids, int64(n))
		case float64:
			ids = append(ids, int64(n))
		default:
			return nil, fmt.Errorf("unexpected type_id value %v (%T)", v, v)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// TypeName returns the configured name of a tool type. ok is false when
// the type has no record.
func (s *Store) TypeName(ctx context.Context, typeID int64) (string, bool, error) {
	var t models.LTIType
	err := s.types.FindOne(ctx, bson.M{"_id": typeID}, options.FindOne().SetProjection(bson.M{"name": 1})).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return t.Name, true, nil
}

// TypeNames returns the names of all tool types keyed by id.
func (s *Store) TypeNames(ctx context.Context) (map[int64]string, error) {
	cur, err := s.types.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var types []models.LTIType
	if err := cur.All(ctx, &types); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

// Get loads one activity by course-module id.
func (s *Store) Get(ctx context.Context, cmid int64) (models.LTIActivity, error) {
	var a models.LTIActivity
	err := s.activities.FindOne(ctx, bson.M{"_id": cmid}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.LTIActivity{}, ErrNotFound
	}
	return a, err
}

// Delete removes one activity by course-module id.
func (s *Store) Delete(ctx context.Context, cmid int64) error {
	res, err := s.activities.DeleteOne(ctx, bson.M{"_id": cmid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
