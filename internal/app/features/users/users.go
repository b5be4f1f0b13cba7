// internal/app/features/users/users.go
package users

import (
	"context"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/userpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type profileInput struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

type listInput struct {
	Role           models.Role `json:"role" validate:"omitempty,oneof=BENEFICIARY CONSULTANT ORG_ADMIN ADMIN"`
	OrganizationID *int64      `json:"organizationId" validate:"omitempty,min=1"`
	ActiveOnly     bool        `json:"isActive"`
	Search         string      `json:"search" validate:"max=200"`
}

type idInput struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

type updateInput struct {
	ID             int64        `json:"id" validate:"required,min=1"`
	Name           *string      `json:"name" validate:"omitempty,min=1,max=200"`
	Email          *string      `json:"email" validate:"omitempty,email"`
	Phone          *string      `json:"phone" validate:"omitempty,max=30"`
	Role           *models.Role `json:"role" validate:"omitempty,oneof=BENEFICIARY CONSULTANT ORG_ADMIN ADMIN"`
	OrganizationID *int64       `json:"organizationId" validate:"omitempty,min=1"`
	IsActive       *bool        `json:"isActive"`
}

type assignInput struct {
	UserID         int64 `json:"userId" validate:"required,min=1"`
	OrganizationID int64 `json:"organizationId" validate:"required,min=1"`
}

// me returns the caller's stored account.
func (h *Handler) me(ctx context.Context, a authz.Actor, _ rpc.Empty) (models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "users.me")
	defer cancel()
	return shared.User(ctx, h.Stores.Users, a.ID)
}

func (h *Handler) updateProfile(ctx context.Context, a authz.Actor, in profileInput) (models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "users.updateProfile")
	defer cancel()

	u, err := h.Stores.Users.Update(ctx, a.ID, store.UserPatch{
		Name:      trimmed(in.Name),
		Phone:     trimmed(in.Phone),
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		return models.User{}, apperr.FromStore("user", err)
	}
	return u, nil
}

// list is bounded by the caller's scope; an ORG_ADMIN asking for another
// organization still only sees their own.
func (h *Handler) list(ctx context.Context, a authz.Actor, in listInput) ([]models.User, error) {
	f, ok := userpolicy.ListScope(a)
	if !ok {
		return nil, apperr.Forbidden("not allowed to list users")
	}
	if f.OrganizationID == nil {
		f.OrganizationID = in.OrganizationID
	}
	f.Role = in.Role
	f.ActiveOnly = in.ActiveOnly
	f.Search = strings.TrimSpace(in.Search)

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "users.list")
	defer cancel()

	out, err := h.Stores.Users.Find(ctx, f)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

func (h *Handler) load(ctx context.Context, a authz.Actor, id int64, allow func(authz.Actor, models.User) bool) (models.User, error) {
	u, err := shared.User(ctx, h.Stores.Users, id)
	if err != nil {
		return models.User{}, err
	}
	if !allow(a, u) {
		return models.User{}, apperr.Forbidden("not allowed on this user")
	}
	return u, nil
}

func (h *Handler) getByID(ctx context.Context, a authz.Actor, in idInput) (models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "users.getById")
	defer cancel()
	return h.load(ctx, a, in.ID, userpolicy.CanRead)
}

// update edits another account. Granting a role and moving organizations
// carry their own checks, and nobody changes their own role.
func (h *Handler) update(ctx context.Context, a authz.Actor, in updateInput) (models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "users.update")
	defer cancel()

	u, err := h.load(ctx, a, in.ID, userpolicy.CanUpdate)
	if err != nil {
		return models.User{}, err
	}
	if in.Role != nil && *in.Role != u.Role {
		if !userpolicy.CanGrantRole(a, *in.Role) {
			return models.User{}, apperr.Forbidden("not allowed to grant role %s", *in.Role)
		}
		if u.ID == a.ID {
			return models.User{}, apperr.Conflict("cannot change your own role")
		}
	}
	if in.OrganizationID != nil && !sameID(in.OrganizationID, u.OrganizationID) {
		if !userpolicy.CanAssignOrganization(a) {
			return models.User{}, apperr.Forbidden("only administrators move users between organizations")
		}
		if err := h.checkOrganization(ctx, *in.OrganizationID); err != nil {
			return models.User{}, err
		}
	}
	if in.IsActive != nil && !*in.IsActive && u.ID == a.ID {
		return models.User{}, apperr.Conflict("cannot deactivate your own account")
	}

	out, err := h.Stores.Users.Update(ctx, u.ID, store.UserPatch{
		Name:           trimmed(in.Name),
		Email:          in.Email,
		Phone:          trimmed(in.Phone),
		Role:           in.Role,
		OrganizationID: in.OrganizationID,
		IsActive:       in.IsActive,
	})
	if err != nil {
		return models.User{}, apperr.FromStore("user", err)
	}
	h.Audit.Admin(ctx, models.ActionUserUpdated, "user", u.ID, out.OrganizationID, changed(in, u))
	return out, nil
}

func (h *Handler) deactivate(ctx context.Context, a authz.Actor, in idInput) (models.User, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "users.deactivate")
	defer cancel()

	u, err := h.load(ctx, a, in.ID, userpolicy.CanDeactivate)
	if err != nil {
		return models.User{}, err
	}
	if u.ID == a.ID {
		return models.User{}, apperr.Conflict("cannot deactivate your own account")
	}
	out, err := h.Stores.Users.Update(ctx, u.ID, store.UserPatch{IsActive: shared.Ptr(false)})
	if err != nil {
		return models.User{}, apperr.FromStore("user", err)
	}
	h.Audit.Admin(ctx, models.ActionUserDeactivated, "user", u.ID, u.OrganizationID, nil)
	return out, nil
}

func (h *Handler) assignToOrganization(ctx context.Context, a authz.Actor, in assignInput) (models.User, error) {
	if !userpolicy.CanAssignOrganization(a) {
		return models.User{}, apperr.Forbidden("only administrators move users between organizations")
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "users.assignToOrganization")
	defer cancel()

	u, err := shared.User(ctx, h.Stores.Users, in.UserID)
	if err != nil {
		return models.User{}, err
	}
	if err := h.checkOrganization(ctx, in.OrganizationID); err != nil {
		return models.User{}, err
	}
	out, err := h.Stores.Users.Update(ctx, u.ID, store.UserPatch{OrganizationID: &in.OrganizationID})
	if err != nil {
		return models.User{}, apperr.FromStore("user", err)
	}
	h.Audit.Admin(ctx, models.ActionUserOrgAssigned, "user", u.ID, &in.OrganizationID, map[string]any{
		"previous_organization_id": u.OrganizationID,
	})
	return out, nil
}

func (h *Handler) checkOrganization(ctx context.Context, id int64) error {
	o, err := h.Stores.Organizations.GetByID(ctx, id)
	if err != nil {
		return apperr.FromStore("organization", err)
	}
	if !o.IsActive {
		return apperr.Conflict("organization %s is inactive", o.Name)
	}
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func changed(in updateInput, before models.User) map[string]any {
	diff := map[string]any{}
	if in.Name != nil {
		diff["name"] = true
	}
	if in.Email != nil {
		diff["email"] = true
	}
	if in.Phone != nil {
		diff["phone"] = true
	}
	if in.Role != nil && *in.Role != before.Role {
		diff["role"] = map[string]models.Role{"from": before.Role, "to": *in.Role}
	}
	if in.OrganizationID != nil {
		diff["organizationId"] = *in.OrganizationID
	}
	if in.IsActive != nil {
		diff["isActive"] = *in.IsActive
	}
	return diff
}
