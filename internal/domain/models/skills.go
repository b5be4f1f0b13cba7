// internal/domain/models/skills.go
package models

import "time"

// Frequency is how often the beneficiary uses a skill.
type Frequency string

const (
	FrequencyRare       Frequency = "RARE"
	FrequencyOccasional Frequency = "OCCASIONAL"
	FrequencyFrequent   Frequency = "FREQUENT"
	FrequencyDaily      Frequency = "DAILY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyRare, FrequencyOccasional, FrequencyFrequent, FrequencyDaily:
		return true
	}
	return false
}

// Preference is how much the beneficiary enjoys using a skill.
type Preference string

const (
	PreferenceDislike Preference = "DISLIKE"
	PreferenceNeutral Preference = "NEUTRAL"
	PreferenceLike    Preference = "LIKE"
	PreferenceLove    Preference = "LOVE"
)

func (p Preference) Valid() bool {
	switch p {
	case PreferenceDislike, PreferenceNeutral, PreferenceLike, PreferenceLove:
		return true
	}
	return false
}

// DefaultSkillCategory groups evaluations saved without a category.
const DefaultSkillCategory = "Autre"

// SkillsEvaluation is one skill rated during a bilan. SkillName is unique
// within a bilan; saving the same name again updates the existing row.
type SkillsEvaluation struct {
	ID                    int64      `bson:"_id" json:"id"`
	BilanID               int64      `bson:"bilan_id" json:"bilanId"`
	SkillName             string     `bson:"skill_name" json:"skillName"`
	Category              string     `bson:"category,omitempty" json:"category,omitempty"`
	Level                 int        `bson:"level" json:"level"`
	Frequency             Frequency  `bson:"frequency,omitempty" json:"frequency,omitempty"`
	Preference            Preference `bson:"preference,omitempty" json:"preference,omitempty"`
	Notes                 string     `bson:"notes,omitempty" json:"notes,omitempty"`
	ValidatedByConsultant bool       `bson:"validated_by_consultant" json:"validatedByConsultant"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
