// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
Ensure reconciles the desired indexes of one collection. It is idempotent:
an index with the same key pattern and uniqueness is reused (renamed if its
name differs), one with different options is dropped and recreated, and a
missing one is created. Problems are aggregated so startup can fail with
all of them at once.
*/
func Ensure(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := list(ctx, coll)
	if err != nil {
		return fmt.Errorf("%s: list indexes: %w", coll.Name(), err)
	}

	var problems []string
	for _, m := range models {
		if err := ensureOne(ctx, coll, m, existing, logger); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func list(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, err
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func ensureOne(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, existing map[string]existingIndex, logger *zap.Logger) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	keys, ok := m.Keys.(bson.D)
	if !ok {
		return fmt.Errorf("%s(%s): keys must be bson.D", coll.Name(), name)
	}
	sig := keySig(keys)
	start := time.Now()

	log := logger.With(
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", isTrue(unique)))

	ex, found := existing[sig]
	switch {
	case found && isTrue(ex.Unique) == isTrue(unique) && (name == "" || ex.Name == name):
		log.Debug("reusing existing index")
		return nil

	case found:
		// Same keys, different name or uniqueness.
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop %s: %w", coll.Name(), name, ex.Name, err)
		}
		log.Info("dropped index to recreate", zap.String("old_name", ex.Name))
	}

	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if isTrue(unique) && isDuplicateKeyErr(err) {
			return fmt.Errorf("%s(%s): cannot create unique index, duplicates present", coll.Name(), name)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	log.Info("index created", zap.Duration("took", time.Since(start)))
	return nil
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isTrue(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
