package indexes_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/system/indexes"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes on %s failed: %v", coll, err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("Decode index failed: %v", err)
		}
		names[idx["name"].(string)] = true
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users":              {"uniq_users_openid", "idx_users_org_role_nameci_id"},
		"organizations":      {"uniq_orgs_siret", "idx_orgs_nameci__id"},
		"bilans":             {"idx_bilans_org_created", "idx_bilans_consultant_created", "idx_bilans_beneficiary_created"},
		"sessions":           {"idx_sessions_bilan_scheduled"},
		"messages":           {"idx_messages_bilan_created", "idx_messages_receiver_unread"},
		"skills_evaluations": {"uniq_skills_bilan_name"},
		"audit_logs":         {"idx_audit_org_created", "idx_audit_entity_created"},
	}
	for coll, want := range expected {
		got := indexNames(t, db, coll)
		for _, name := range want {
			if !got[name] {
				t.Errorf("%s: expected index %s to exist", coll, name)
			}
		}
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	skills := db.Collection("skills_evaluations")
	if _, err := skills.InsertOne(ctx, bson.M{"_id": 1, "bilan_id": 7, "skill_name": "Excel"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := skills.InsertOne(ctx, bson.M{"_id": 2, "bilan_id": 7, "skill_name": "Excel"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key error, got %v", err)
	}

	// Blank SIRETs may repeat.
	orgs := db.Collection("organizations")
	for i := 1; i <= 2; i++ {
		if _, err := orgs.InsertOne(ctx, bson.M{"_id": i, "name": "Org", "siret": ""}); err != nil {
			t.Fatalf("insert org %d with blank siret failed: %v", i, err)
		}
	}
}

func TestEnsureAll_RealignsMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys as uniq_users_openid, wrong name and not unique.
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "open_id", Value: 1}},
		Options: options.Index().SetName("legacy_openid"),
	})
	if err != nil {
		t.Fatalf("create legacy index failed: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	got := indexNames(t, db, "users")
	if got["legacy_openid"] || !got["uniq_users_openid"] {
		t.Errorf("expected legacy index replaced, got %v", got)
	}
}

func TestEnsureAll_ReportsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := db.Collection("users")
	for i := 1; i <= 2; i++ {
		if _, err := users.InsertOne(ctx, bson.M{"_id": i, "open_id": "same"}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	err := indexes.EnsureAll(ctx, db)
	if err == nil || !strings.Contains(err.Error(), "users.open_id") {
		t.Errorf("expected a duplicate hint for users.open_id, got %v", err)
	}
}
