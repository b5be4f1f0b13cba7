// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// Actor is the caller as seen by the policy predicates.
type Actor struct {
	ID             int64
	Role           models.Role
	OrganizationID *int64
	Name           string
}

// FromSessionUser converts the signed-in user to an Actor. Unknown roles
// become the empty role, which no predicate grants anything to.
func FromSessionUser(u *auth.SessionUser) Actor {
	role := models.Role(strings.ToUpper(strings.TrimSpace(u.Role)))
	if !role.Valid() {
		role = ""
	}
	return Actor{ID: u.ID, Role: role, OrganizationID: u.OrganizationID, Name: u.Name}
}

// ActorFrom returns the Actor for the signed-in user in ctx.
// ok is false when no user is present.
func ActorFrom(ctx context.Context) (Actor, bool) {
	u, ok := auth.UserFromContext(ctx)
	if !ok {
		return Actor{}, false
	}
	return FromSessionUser(u), true
}

// UserCtx is ActorFrom for a request.
func UserCtx(r *http.Request) (Actor, bool) {
	return ActorFrom(r.Context())
}

func (a Actor) IsAdmin() bool       { return a.Role == models.RoleAdmin }
func (a Actor) IsOrgAdmin() bool    { return a.Role == models.RoleOrgAdmin }
func (a Actor) IsConsultant() bool  { return a.Role == models.RoleConsultant }
func (a Actor) IsBeneficiary() bool { return a.Role == models.RoleBeneficiary }

// SameOrg reports whether the actor belongs to orgID. Both ids must be set.
func (a Actor) SameOrg(orgID *int64) bool {
	return a.OrganizationID != nil && orgID != nil && *a.OrganizationID == *orgID
}

// Is reports whether id is the actor's own id.
func (a Actor) Is(id *int64) bool {
	return id != nil && *id == a.ID
}
