package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/ltiusage/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateLTIType inserts a tool type.
func (f *Fixtures) CreateLTIType(ctx context.Context, id int64, name string) models.LTIType {
	f.t.Helper()

	lt := models.LTIType{ID: id, Name: name, BaseURL: fmt.Sprintf("https://tool%d.example.com/launch", id)}
	if _, err := f.db.Collection("lti_types").InsertOne(ctx, lt); err != nil {
		f.t.Fatalf("failed to create test lti type: %v", err)
	}
	return lt
}

// CreateActivity inserts one LTI activity.
func (f *Fixtures) CreateActivity(ctx context.Context, a models.LTIActivity) models.LTIActivity {
	f.t.Helper()

	if _, err := f.db.Collection("lti_activities").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test activity %d: %v", a.CourseModuleID, err)
	}
	return a
}

// CreateActivities inserts the activities built by Activities.
func (f *Fixtures) CreateActivities(ctx context.Context, typeID int64, firstCMID int64, n int) []models.LTIActivity {
	f.t.Helper()

	out := Activities(typeID, firstCMID, n)
	if n == 0 {
		return out
	}
	docs := make([]interface{}, 0, n)
	for _, a := range out {
		docs = append(docs, a)
	}
	if _, err := f.db.Collection("lti_activities").InsertMany(ctx, docs); err != nil {
		f.t.Fatalf("failed to create test activities: %v", err)
	}
	return out
}

// CreateUser creates a test user with the given role and status "active".
func (f *Fixtures) CreateUser(ctx context.Context, name, loginID, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  name,
		LoginID:   loginID,
		Role:      role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// DisableUser sets a user's status to "disabled".
func (f *Fixtures) DisableUser(ctx context.Context, id primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("users").UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": "disabled"}})
	if err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}
}
