// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.

The partial unique index on requests.(donation_id, charity_email) over the
active statuses is load-bearing: it closes the residual race window in the
duplicate-claim check, turning the "check then insert" pair into a true
guarantee while leaving rejected charities free to file again.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db, logger); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureDonations(ctx, db, logger); err != nil {
		problems = append(problems, "donations: "+err.Error())
	}
	if err := ensureRequests(ctx, db, logger); err != nil {
		problems = append(problems, "requests: "+err.Error())
	}
	if err := ensureTransections(ctx, db, logger); err != nil {
		problems = append(problems, "transections: "+err.Error())
	}
	if err := ensureReviews(ctx, db, logger); err != nil {
		problems = append(problems, "reviews: "+err.Error())
	}
	if err := ensureFavorites(ctx, db, logger); err != nil {
		problems = append(problems, "favorites: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("users"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("by_role"),
		},
	})
}

func ensureDonations(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("donations"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_email", Value: 1}},
			Options: options.Index().SetName("by_restaurant"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "is_featured", Value: 1}},
			Options: options.Index().SetName("by_status_featured"),
		},
	})
}

func ensureRequests(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	// Partial on the active statuses so it enforces exactly what the
	// duplicate-claim pre-check tests: a rejected charity may file again.
	activeClaim := bson.D{{Key: "request_status", Value: bson.D{{Key: "$in", Value: bson.A{models.RequestPending, models.RequestAccepted}}}}}
	return ensureIndexSet(ctx, db.Collection("requests"), logger, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "donation_id", Value: 1}, {Key: "charity_email", Value: 1}},
			Options: options.Index().SetName("uniq_active_donation_charity").
				SetUnique(true).SetPartialFilterExpression(activeClaim),
		},
		{
			Keys:    bson.D{{Key: "donation_id", Value: 1}, {Key: "request_status", Value: 1}},
			Options: options.Index().SetName("by_donation_status"),
		},
		{
			Keys:    bson.D{{Key: "charity_email", Value: 1}},
			Options: options.Index().SetName("by_charity"),
		},
	})
}

func ensureTransections(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("transections"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "request_time", Value: -1}},
			Options: options.Index().SetName("by_email_time"),
		},
	})
}

func ensureReviews(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("reviews"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "donation_id", Value: 1}},
			Options: options.Index().SetName("by_donation"),
		},
		{
			Keys:    bson.D{{Key: "reviewer_email", Value: 1}},
			Options: options.Index().SetName("by_reviewer"),
		},
	})
}

func ensureFavorites(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("favorites"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_email", Value: 1}, {Key: "donation_id", Value: 1}},
			Options: options.Index().SetName("uniq_user_donation").SetUnique(true),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.D `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(p *bool) bool { return p != nil && *p }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// ensureIndexSet creates each desired index if an index with the same key
// pattern and uniqueness does not already exist. A same-keys index with
// different options is dropped and recreated; a unique index that cannot be
// created because duplicates already exist is reported, not swallowed.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if derr := cur.Decode(&idx); derr != nil {
				logger.Warn("failed to decode existing index",
					zap.String("collection", coll.Name()), zap.Error(derr))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range desired {
		name := ""
		var unique *bool
		partial := false
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
			partial = m.Options.PartialFilterExpression != nil
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if boolOf(unique) == boolOf(ex.Unique) && partial == (len(ex.Partial) > 0) {
				continue // reuse as-is; index names are not load-bearing here
			}
			// Options mismatch (e.g. upgrading to unique or partial): drop
			// and recreate.
			if _, derr := coll.Indexes().DropOne(ctx, ex.Name); derr != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, derr))
				continue
			}
		}

		if _, cerr := coll.Indexes().CreateOne(ctx, m); cerr != nil {
			if isDuplicateKeyErr(cerr) && boolOf(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index, duplicates present", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, cerr))
			}
			continue
		}
		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolOf(unique)),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
