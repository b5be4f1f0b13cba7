// Package orgpolicy provides authorization predicates for organizations.
//
// Admins see and edit every organization and are the only ones who can
// create them. Org admins see and edit their own.
package orgpolicy

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// CanRead reports whether the actor may view the organization and its stats.
func CanRead(a authz.Actor, o models.Organization) bool {
	id := o.ID
	return a.IsAdmin() || (a.IsOrgAdmin() && a.SameOrg(&id))
}

// CanCreate reports whether the actor may create organizations.
func CanCreate(a authz.Actor) bool {
	return a.IsAdmin()
}

// CanUpdate reports whether the actor may edit the organization, including
// its Qualiopi indicator statuses.
func CanUpdate(a authz.Actor, o models.Organization) bool {
	return CanRead(a, o)
}

// ListScope returns the filter bounding organization listings. ok is false
// when the actor may list none.
func ListScope(a authz.Actor) (store.OrganizationFilter, bool) {
	switch {
	case a.IsAdmin():
		return store.OrganizationFilter{}, true
	case a.IsOrgAdmin() && a.OrganizationID != nil:
		id := *a.OrganizationID
		return store.OrganizationFilter{ID: &id}, true
	}
	return store.OrganizationFilter{}, false
}
