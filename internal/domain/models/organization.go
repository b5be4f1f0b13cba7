// internal/domain/models/organization.go
package models

import "time"

// Organization is a training body that owns consultants, beneficiaries, and
// bilans. NameCI is the folded name used for search and sort.
type Organization struct {
	ID        int64  `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	NameCI    string `bson:"name_ci" json:"-"`
	Siret     string `bson:"siret" json:"siret"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
	LogoURL   string `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	Settings  Blob   `bson:"settings,omitempty" json:"settings,omitempty"`
	IsActive  bool   `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IndicatorStatus tracks progress on one Qualiopi indicator.
type IndicatorStatus string

const (
	IndicatorTodo       IndicatorStatus = "TODO"
	IndicatorInProgress IndicatorStatus = "IN_PROGRESS"
	IndicatorDone       IndicatorStatus = "DONE"
)

func (s IndicatorStatus) Valid() bool {
	return s == IndicatorTodo || s == IndicatorInProgress || s == IndicatorDone
}

// OrgSettings is the typed view of Organization.Settings.
type OrgSettings struct {
	QualiopiIndicators map[int]IndicatorStatus `json:"qualiopiIndicators,omitempty"`
}
