package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/system/indexes"
	"github.com/dalemusser/ltiusage/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

var (
	// ErrDuplicateLoginID is returned when attempting to create a user with a login ID that already exists.
	ErrDuplicateLoginID = errors.New("a user with this login id already exists")
	errBadRole          = errors.New(`role must be "superadmin"|"admin"|"manager"|"viewer"`)
	errBadStatus        = errors.New(`status must be "active"|"disabled"`)
	errNoLoginID        = errors.New("login id is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique login_id index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return indexes.Ensure(ctx, s.c, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "login_id", Value: 1}},
		Options: options.Index().SetName("uniq_users_login_id").SetUnique(true),
	}}, zap.L())
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLoginID looks up a user by case-insensitive login ID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"login_id": normalizeLoginID(loginID)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = strings.TrimSpace(u.FullName)
	u.LoginID = normalizeLoginID(u.LoginID)
	u.Role = strings.ToLower(strings.TrimSpace(u.Role))
	if u.Status == "" {
		u.Status = StatusActive
	}

	if u.LoginID == "" {
		return models.User{}, errNoLoginID
	}
	switch u.Role {
	case "superadmin", "admin", "manager", "viewer":
		// ok
	default:
		return models.User{}, errBadRole
	}
	if u.Status != StatusActive && u.Status != StatusDisabled {
		return models.User{}, errBadStatus
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateLoginID
		}
		return models.User{}, err
	}
	return u, nil
}

func normalizeLoginID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
