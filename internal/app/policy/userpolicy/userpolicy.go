// Package userpolicy provides authorization predicates for user accounts.
//
// Authorization rules:
//   - Everyone can read their own account
//   - Admins can read and manage every account
//   - Org admins can read and manage accounts of their organization, but
//     never grant the ADMIN role nor touch an admin account
//   - Only admins move users between organizations
package userpolicy

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// CanRead reports whether the actor may view the user.
func CanRead(a authz.Actor, u models.User) bool {
	switch {
	case a.ID == u.ID && a.Role.Valid():
		return true
	case a.IsAdmin():
		return true
	case a.IsOrgAdmin():
		return a.SameOrg(u.OrganizationID)
	}
	return false
}

// CanUpdate reports whether the actor may edit another user's account,
// role and active flag included.
func CanUpdate(a authz.Actor, u models.User) bool {
	switch {
	case a.IsAdmin():
		return true
	case a.IsOrgAdmin():
		return u.Role != models.RoleAdmin && a.SameOrg(u.OrganizationID)
	}
	return false
}

// CanDeactivate follows the update rule.
func CanDeactivate(a authz.Actor, u models.User) bool {
	return CanUpdate(a, u)
}

// CanGrantRole reports whether the actor may set role on someone.
func CanGrantRole(a authz.Actor, role models.Role) bool {
	switch {
	case a.IsAdmin():
		return role.Valid()
	case a.IsOrgAdmin():
		return role.Valid() && role != models.RoleAdmin
	}
	return false
}

// CanAssignOrganization reports whether the actor may move users between
// organizations.
func CanAssignOrganization(a authz.Actor) bool {
	return a.IsAdmin()
}

// ListScope returns the filter bounding user listings. ok is false when the
// actor may list none.
func ListScope(a authz.Actor) (store.UserFilter, bool) {
	switch {
	case a.IsAdmin():
		return store.UserFilter{}, true
	case a.IsOrgAdmin() && a.OrganizationID != nil:
		id := *a.OrganizationID
		return store.UserFilter{OrganizationID: &id}, true
	}
	return store.UserFilter{}, false
}
