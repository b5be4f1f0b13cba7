// internal/domain/models/user.go
package models

import "time"

// User is anyone who signs in: beneficiaries, consultants, and administrators.
// OpenID is the subject issued by the external identity provider.
type User struct {
	ID             int64      `bson:"_id" json:"id"`
	OpenID         string     `bson:"open_id" json:"openId"`
	Name           string     `bson:"name" json:"name"`
	NameCI         string     `bson:"name_ci" json:"-"`
	Email          string     `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string     `bson:"phone,omitempty" json:"phone,omitempty"`
	AvatarURL      string     `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	Role           Role       `bson:"role" json:"role"`
	OrganizationID *int64     `bson:"organization_id,omitempty" json:"organizationId,omitempty"`
	IsActive       bool       `bson:"is_active" json:"isActive"`
	DeletedAt      *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	LastSignedIn   *time.Time `bson:"last_signed_in,omitempty" json:"lastSignedIn,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Enabled reports whether the user may still sign in.
func (u User) Enabled() bool {
	return u.IsActive && u.DeletedAt == nil
}
