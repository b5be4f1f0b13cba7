// internal/domain/models/assessment.go
package models

import "time"

// Typed views of the JSON documents stored in Bilan and Recommendation blobs.

// CareerMatch is one suggested occupation.
type CareerMatch struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	MatchScore     int      `json:"matchScore"`
	RequiredSkills []string `json:"requiredSkills"`
	TrainingNeeded []string `json:"trainingNeeded"`
}

// CareerAdvice is the result of a career recommendation run.
type CareerAdvice struct {
	Recommendations []CareerMatch `json:"recommendations"`
	Summary         string        `json:"summary"`
}

// SkillsAnalysis is stored in Bilan.AssessmentData.
type SkillsAnalysis struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
	DevelopmentPlan     string   `json:"developmentPlan"`
	CareerPaths         []string `json:"careerPaths"`
}

// PlannedAction is one step of an action plan. Priority is HIGH, MEDIUM, or LOW.
type PlannedAction struct {
	Action   string `json:"action"`
	Deadline string `json:"deadline"`
	Priority string `json:"priority"`
}

// PriorityValue maps the textual priority onto the recommendation scale.
func (a PlannedAction) PriorityValue() int {
	switch a.Priority {
	case "HIGH":
		return PriorityHigh
	case "MEDIUM":
		return PriorityMedium
	}
	return PriorityLow
}

// ActionPlan is stored in Bilan.ActionPlan.
type ActionPlan struct {
	ShortTermActions  []PlannedAction `json:"shortTermActions"`
	MediumTermActions []PlannedAction `json:"mediumTermActions"`
	LongTermActions   []PlannedAction `json:"longTermActions"`
	KeyMilestones     []string        `json:"keyMilestones"`
	Resources         []string        `json:"resources"`
}

// Synthesis is stored in Bilan.SynthesisData. Content is markdown.
type Synthesis struct {
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// MatchPriority maps a match score onto the recommendation scale.
func MatchPriority(score int) int {
	switch {
	case score >= 80:
		return PriorityHigh
	case score >= 60:
		return PriorityMedium
	}
	return PriorityLow
}
