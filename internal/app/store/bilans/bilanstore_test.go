package bilanstore_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	bilanstore "github.com/dalemusser/bilanhub/internal/app/store/bilans"
	"github.com/dalemusser/bilanhub/internal/app/store/counters"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
)

func TestCounters_Next(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := counters.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Next(ctx, "things")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Errorf("Next = %d, want %d", got, want)
		}
	}
	other, err := c.Next(ctx, "others")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if other != 1 {
		t.Errorf("sequences must be independent, got %d", other)
	}
}

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := bilanstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := int64(3)
	b, err := s.Create(ctx, models.Bilan{BeneficiaryID: 10, OrganizationID: &org})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.ID != 1 {
		t.Errorf("first bilan id = %d, want 1", b.ID)
	}
	if b.Status != models.BilanPreliminary {
		t.Errorf("status = %s, want PRELIMINARY", b.Status)
	}
	if b.DurationHours != models.DefaultDurationHours {
		t.Errorf("duration = %d, want %d", b.DurationHours, models.DefaultDurationHours)
	}
	if b.StartDate.IsZero() {
		t.Error("expected StartDate to default to now")
	}

	got, err := s.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.BeneficiaryID != 10 || got.OrganizationID == nil || *got.OrganizationID != org {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestStore_FindAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := bilanstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA, orgB := int64(1), int64(2)
	consultant := int64(50)
	seed := []models.Bilan{
		{BeneficiaryID: 10, OrganizationID: &orgA, ConsultantID: &consultant},
		{BeneficiaryID: 11, OrganizationID: &orgA, Status: models.BilanCompleted},
		{BeneficiaryID: 10, OrganizationID: &orgB},
	}
	for _, b := range seed {
		if _, err := s.Create(ctx, b); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	ben := int64(10)
	tests := []struct {
		name string
		f    store.BilanFilter
		want int
	}{
		{"all", store.BilanFilter{}, 3},
		{"org", store.BilanFilter{OrganizationID: &orgA}, 2},
		{"consultant", store.BilanFilter{ConsultantID: &consultant}, 1},
		{"beneficiary", store.BilanFilter{BeneficiaryID: &ben}, 2},
		{"status", store.BilanFilter{OrganizationID: &orgA, Status: models.BilanCompleted}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Find(ctx, tc.f)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("Find: got %d, want %d", len(got), tc.want)
			}
			n, err := s.Count(ctx, tc.f)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n != int64(tc.want) {
				t.Errorf("Count: got %d, want %d", n, tc.want)
			}
		})
	}

	all, _ := s.Find(ctx, store.BilanFilter{})
	if all[0].ID != 3 {
		t.Errorf("expected newest first, got id %d", all[0].ID)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := bilanstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := s.Create(ctx, models.Bilan{BeneficiaryID: 10, Objectives: "Reconversion"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	status := models.BilanCompleted
	end := time.Now().UTC().Truncate(time.Millisecond)
	plan := models.Blob(`{"keyMilestones":["Formation"]}`)
	updated, err := s.Update(ctx, b.ID, store.BilanPatch{Status: &status, ActualEndDate: &end, ActionPlan: &plan})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != status || updated.ActualEndDate == nil || !updated.ActualEndDate.Equal(end) {
		t.Errorf("unexpected bilan %+v", updated)
	}
	if updated.Objectives != "Reconversion" {
		t.Error("untouched field changed")
	}
	var ap models.ActionPlan
	if err := updated.ActionPlan.Decode(&ap); err != nil || len(ap.KeyMilestones) != 1 {
		t.Errorf("action plan not stored: %v %+v", err, ap)
	}

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.GetByID(ctx, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
