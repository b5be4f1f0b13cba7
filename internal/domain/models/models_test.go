package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dalemusser/bilanhub/internal/domain/models"
)

func TestBlob_JSONInline(t *testing.T) {
	type wrapper struct {
		Data models.Blob `json:"data"`
	}

	b, err := models.EncodeBlob(models.Synthesis{Content: "# Synthèse"})
	if err != nil {
		t.Fatalf("EncodeBlob failed: %v", err)
	}
	out, err := json.Marshal(wrapper{Data: b})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := `{"data":{"content":"# Synthèse","generatedAt":"0001-01-01T00:00:00Z"}}`; string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}

	empty, _ := json.Marshal(wrapper{})
	if string(empty) != `{"data":null}` {
		t.Errorf("empty blob: got %s", empty)
	}

	var in wrapper
	if err := json.Unmarshal([]byte(`{"data":{"strengths":["écoute"]}}`), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	var sa models.SkillsAnalysis
	if err := in.Data.Decode(&sa); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(sa.Strengths) != 1 || sa.Strengths[0] != "écoute" {
		t.Errorf("decoded %+v", sa)
	}
}

func TestBlob_DecodeEmptyLeavesTarget(t *testing.T) {
	v := models.OrgSettings{QualiopiIndicators: map[int]models.IndicatorStatus{1: models.IndicatorDone}}
	if err := models.Blob("").Decode(&v); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.QualiopiIndicators[1] != models.IndicatorDone {
		t.Error("empty blob must not reset the target")
	}
	if err := models.Blob("{not json").Decode(&v); err == nil {
		t.Error("expected an error for malformed blob")
	}
}

func TestRole_Rank(t *testing.T) {
	if !(models.RoleBeneficiary.Rank() < models.RoleConsultant.Rank() &&
		models.RoleConsultant.Rank() < models.RoleOrgAdmin.Rank() &&
		models.RoleOrgAdmin.Rank() < models.RoleAdmin.Rank()) {
		t.Error("roles are not ordered by privilege")
	}
	if models.Role("GUEST").Rank() != 0 || models.Role("GUEST").Valid() {
		t.Error("unknown role must rank 0 and be invalid")
	}
}

func TestUser_Enabled(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		u    models.User
		want bool
	}{
		{"active", models.User{IsActive: true}, true},
		{"inactive", models.User{IsActive: false}, false},
		{"deleted", models.User{IsActive: true, DeletedAt: &now}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.Enabled(); got != tc.want {
				t.Errorf("Enabled() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBilanStatus_Active(t *testing.T) {
	for _, s := range []models.BilanStatus{models.BilanPreliminary, models.BilanInvestigation, models.BilanConclusion} {
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range []models.BilanStatus{models.BilanCompleted, models.BilanArchived} {
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
}

func TestPriorities(t *testing.T) {
	if models.MatchPriority(85) != models.PriorityHigh ||
		models.MatchPriority(60) != models.PriorityMedium ||
		models.MatchPriority(10) != models.PriorityLow {
		t.Error("MatchPriority thresholds wrong")
	}
	if (models.PlannedAction{Priority: "HIGH"}).PriorityValue() != models.PriorityHigh ||
		(models.PlannedAction{Priority: "whatever"}).PriorityValue() != models.PriorityLow {
		t.Error("PriorityValue mapping wrong")
	}
}

func TestSurveyResponse_AverageRating(t *testing.T) {
	four, five := 4, 5
	r := models.SurveyResponse{Answers: []models.SurveyAnswer{
		{QuestionKey: "a", Rating: &four},
		{QuestionKey: "b", Rating: &five},
		{QuestionKey: "c", Text: "Très bien"},
	}}
	avg, n := r.AverageRating()
	if n != 2 || avg != 4.5 {
		t.Errorf("AverageRating = %v over %d, want 4.5 over 2", avg, n)
	}
	if _, n := (models.SurveyResponse{}).AverageRating(); n != 0 {
		t.Error("no ratings should count 0")
	}
}
