// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll creates or realigns the indexes of every collection. It is
// idempotent; problems from all collections are joined so startup fails
// with the full picture.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, set := range []struct {
		name   string
		models []mongo.IndexModel
	}{
		{"users", userIndexes()},
		{"organizations", organizationIndexes()},
		{"bilans", bilanIndexes()},
		{"sessions", sessionIndexes()},
		{"documents", documentIndexes()},
		{"messages", messageIndexes()},
		{"recommendations", recommendationIndexes()},
		{"skills_evaluations", skillIndexes()},
		{"satisfaction_surveys", surveyIndexes()},
		{"survey_responses", surveyResponseIndexes()},
		{"audit_logs", auditIndexes()},
	} {
		if err := ensureIndexSet(ctx, db.Collection(set.name), set.models); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// existingIndex is the subset of listIndexes output we compare against.
type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func (e existingIndex) unique() bool { return e.Unique != nil && *e.Unique }

// wanted is one desired index, flattened from its IndexModel.
type wanted struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func describe(m mongo.IndexModel) wanted {
	w := wanted{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			w.name = *m.Options.Name
		}
		w.unique = m.Options.Unique != nil && *m.Options.Unique
	}
	return w
}

// listExisting returns the collection's indexes keyed by key signature.
func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]existingIndex)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, fmt.Errorf("decode index: %w", err)
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	var errs []string
	for _, m := range models {
		w := describe(m)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", w.name),
			zap.String("keys", w.sig),
			zap.Bool("unique", w.unique))

		action, err := reconcile(ctx, coll, w, existing)
		if err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), w.name, err))
			continue
		}
		log.Info("index "+action, zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// reconcile brings one index to its desired state. An index with the same
// keys but another name or uniqueness is dropped and recreated.
func reconcile(ctx context.Context, coll *mongo.Collection, w wanted, existing map[string]existingIndex) (string, error) {
	ex, ok := existing[w.sig]
	if !ok {
		if _, err := coll.Indexes().CreateOne(ctx, w.model); err != nil {
			return "", createErr(coll.Name(), w, err)
		}
		return "created", nil
	}
	if ex.unique() == w.unique && (w.name == "" || ex.Name == w.name) {
		return "reused", nil
	}

	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		return "", fmt.Errorf("drop %s: %w", ex.Name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, w.model); err != nil {
		return "", createErr(coll.Name(), w, err)
	}
	return "recreated", nil
}

func createErr(coll string, w wanted, err error) error {
	if w.unique && (wafflemongo.IsDup(err) || mongo.IsDuplicateKeyError(err)) {
		return fmt.Errorf("cannot create unique index, duplicates present%s", duplicateHint(coll, w.sig))
	}
	return err
}

// duplicateHint points at an aggregation that finds the offending rows for
// the unique indexes most likely to be violated by legacy data.
func duplicateHint(coll, sig string) string {
	switch {
	case coll == "users" && strings.Contains(sig, "open_id:1"):
		return ": duplicates exist on users.open_id. Finder:\n" +
			`db.users.aggregate([{ $group: { _id: "$open_id", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	case coll == "organizations" && strings.Contains(sig, "siret:1"):
		return ": duplicates exist on organizations.siret. Finder:\n" +
			`db.organizations.aggregate([{ $match: { siret: { $gt: "" } } }, { $group: { _id: "$siret", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	case coll == "skills_evaluations":
		return ": a bilan has the same skill twice. Finder:\n" +
			`db.skills_evaluations.aggregate([{ $group: { _id: { b: "$bilan_id", s: "$skill_name" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	}
	return ""
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Identity-provider subject, one account per subject.
		{
			Keys:    bson.D{{Key: "open_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_openid"),
		},
		// Org-scoped lists filtered by role, sorted by folded name.
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "role", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_users_org_role_nameci_id"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_role_nameci_id"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email"),
		},
	}
}

func organizationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Blank SIRETs are not constrained.
		{
			Keys: bson.D{{Key: "siret", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orgs_siret").
				SetPartialFilterExpression(bson.M{"siret": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_orgs_nameci__id"),
		},
	}
}

func bilanIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// List scoping: every list filters on one of these, newest first.
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_bilans_org_created"),
		},
		{
			Keys:    bson.D{{Key: "consultant_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_bilans_consultant_created"),
		},
		{
			Keys:    bson.D{{Key: "beneficiary_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_bilans_beneficiary_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_bilans_status"),
		},
	}
}

func sessionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "scheduled_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_sessions_bilan_scheduled"),
		},
	}
}

func documentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_documents_bilan_created"),
		},
	}
}

func messageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_messages_bilan_created"),
		},
		// Unread badge counts.
		{
			Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "bilan_id", Value: 1}},
			Options: options.Index().SetName("idx_messages_receiver_unread"),
		},
	}
}

func recommendationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "priority", Value: -1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_recs_bilan_priority_created"),
		},
	}
}

func skillIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Upserts key on (bilan, skill name).
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "skill_name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_skills_bilan_name"),
		},
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "category", Value: 1}, {Key: "skill_name", Value: 1}},
			Options: options.Index().SetName("idx_skills_bilan_category_name"),
		},
	}
}

func surveyIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_surveys_bilan_created"),
		},
	}
}

func surveyResponseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "survey_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_responses_survey_created"),
		},
		{
			Keys:    bson.D{{Key: "bilan_id", Value: 1}},
			Options: options.Index().SetName("idx_responses_bilan"),
		},
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_audit_org_created"),
		},
		{
			Keys:    bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_entity_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_created"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_created"),
		},
	}
}
