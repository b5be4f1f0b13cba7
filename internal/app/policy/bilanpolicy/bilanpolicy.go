// Package bilanpolicy provides authorization predicates for bilans.
//
// Authorization rules:
//   - Admins can read, write and delete every bilan
//   - Org admins can read, write and delete bilans of their organization
//   - Consultants can read and write the bilans they are assigned to
//   - Beneficiaries can read their own bilans
//
// Deleting and assigning a consultant are reserved to admins and org admins.
// Predicates never touch storage; callers load the bilan first and report
// NotFound before consulting them.
package bilanpolicy

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// CanRead reports whether the actor may see the bilan and its records.
func CanRead(a authz.Actor, b models.Bilan) bool {
	switch a.Role {
	case models.RoleAdmin:
		return true
	case models.RoleOrgAdmin:
		return a.SameOrg(b.OrganizationID)
	case models.RoleConsultant:
		return a.Is(b.ConsultantID)
	case models.RoleBeneficiary:
		return b.BeneficiaryID == a.ID
	}
	return false
}

// CanWrite reports whether the actor may edit the bilan. Beneficiaries never can.
func CanWrite(a authz.Actor, b models.Bilan) bool {
	return !a.IsBeneficiary() && CanRead(a, b)
}

// CanTransition reports whether the actor may move the bilan through its
// workflow. It follows the write rule.
func CanTransition(a authz.Actor, b models.Bilan) bool {
	return CanWrite(a, b)
}

// CanDelete reports whether the actor may delete the bilan with its records.
func CanDelete(a authz.Actor, b models.Bilan) bool {
	return a.IsAdmin() || (a.IsOrgAdmin() && a.SameOrg(b.OrganizationID))
}

// CanAssignConsultant follows the delete rule.
func CanAssignConsultant(a authz.Actor, b models.Bilan) bool {
	return CanDelete(a, b)
}

// CanCreate reports whether the actor may open bilans at all. Where the
// bilan lands is decided by the handler.
func CanCreate(a authz.Actor) bool {
	return a.HasAnyRole(models.RoleConsultant, models.RoleOrgAdmin, models.RoleAdmin)
}

// ScopeFor returns the row-level filter bounding what the actor may list.
// ok is false when the actor may list nothing, such as an org admin without
// an organization.
func ScopeFor(a authz.Actor) (store.BilanFilter, bool) {
	switch a.Role {
	case models.RoleAdmin:
		return store.BilanFilter{}, true
	case models.RoleOrgAdmin:
		if a.OrganizationID == nil {
			return store.BilanFilter{}, false
		}
		org := *a.OrganizationID
		return store.BilanFilter{OrganizationID: &org}, true
	case models.RoleConsultant:
		id := a.ID
		return store.BilanFilter{ConsultantID: &id}, true
	case models.RoleBeneficiary:
		id := a.ID
		return store.BilanFilter{BeneficiaryID: &id}, true
	}
	return store.BilanFilter{}, false
}

// Restrict bounds the caller's requested filter by the actor's scope. The
// field the scope pins (organization, consultant or beneficiary) replaces
// whatever the caller asked for; the remaining requested fields only narrow
// further. ok is false when the actor may list nothing.
func Restrict(a authz.Actor, requested store.BilanFilter) (store.BilanFilter, bool) {
	scope, ok := ScopeFor(a)
	if !ok {
		return store.BilanFilter{}, false
	}
	out := requested
	if scope.OrganizationID != nil {
		out.OrganizationID = scope.OrganizationID
	}
	if scope.ConsultantID != nil {
		out.ConsultantID = scope.ConsultantID
	}
	if scope.BeneficiaryID != nil {
		out.BeneficiaryID = scope.BeneficiaryID
	}
	return out, true
}
