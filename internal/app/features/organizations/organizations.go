// internal/app/features/organizations/organizations.go
package organizations

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type listInput struct {
	ActiveOnly bool   `json:"isActive"`
	Search     string `json:"search" validate:"max=200"`
}

type idInput struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

type statsInput struct {
	OrganizationID int64 `json:"organizationId" validate:"required,min=1"`
}

type createInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Siret   string `json:"siret" validate:"omitempty,siret"`
	Address string `json:"address" validate:"max=500"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
	Website string `json:"website" validate:"omitempty,url"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

type updateInput struct {
	ID       int64   `json:"id" validate:"required,min=1"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Website  *string `json:"website" validate:"omitempty,url"`
	LogoURL  *string `json:"logoUrl" validate:"omitempty,url"`
	IsActive *bool   `json:"isActive"`
}

// Stats counts an organization's users and bilans.
type Stats struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalConsultants   int64 `json:"totalConsultants"`
	TotalBeneficiaries int64 `json:"totalBeneficiaries"`
	TotalBilans        int64 `json:"totalBilans"`
	ActiveBilans       int64 `json:"activeBilans"`
	CompletedBilans    int64 `json:"completedBilans"`
}

func (h *Handler) list(ctx context.Context, a authz.Actor, in listInput) ([]models.Organization, error) {
	f, ok := orgpolicy.ListScope(a)
	if !ok {
		return nil, apperr.Forbidden("not allowed to list organizations")
	}
	f.ActiveOnly = in.ActiveOnly
	f.Search = strings.TrimSpace(in.Search)

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "organizations.list")
	defer cancel()

	out, err := h.Stores.Organizations.Find(ctx, f)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

func (h *Handler) load(ctx context.Context, a authz.Actor, id int64, allow func(authz.Actor, models.Organization) bool) (models.Organization, error) {
	o, err := h.Stores.Organizations.GetByID(ctx, id)
	if err != nil {
		return models.Organization{}, apperr.FromStore("organization", err)
	}
	if !allow(a, o) {
		return models.Organization{}, apperr.Forbidden("not allowed on this organization")
	}
	return o, nil
}

func (h *Handler) getByID(ctx context.Context, a authz.Actor, in idInput) (models.Organization, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "organizations.getById")
	defer cancel()
	return h.load(ctx, a, in.ID, orgpolicy.CanRead)
}

// create is ADMIN only. A SIRET already registered is a Conflict.
func (h *Handler) create(ctx context.Context, a authz.Actor, in createInput) (models.Organization, error) {
	if !orgpolicy.CanCreate(a) {
		return models.Organization{}, apperr.Forbidden("only administrators create organizations")
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "organizations.create")
	defer cancel()

	o, err := h.Stores.Organizations.Create(ctx, models.Organization{
		Name:     strings.TrimSpace(in.Name),
		Siret:    in.Siret,
		Address:  strings.TrimSpace(in.Address),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Website:  in.Website,
		LogoURL:  in.LogoURL,
		IsActive: true,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.Organization{}, apperr.Conflict("an organization with SIRET %s already exists", in.Siret)
	}
	if err != nil {
		return models.Organization{}, apperr.From(err)
	}
	h.Audit.Admin(ctx, models.ActionOrgCreated, "organization", o.ID, &o.ID, map[string]string{"name": o.Name})
	return o, nil
}

// update edits contact details and the active flag. The SIRET and the
// settings document are not editable here; Qualiopi statuses go through
// the qualiopi procedures.
func (h *Handler) update(ctx context.Context, a authz.Actor, in updateInput) (models.Organization, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "organizations.update")
	defer cancel()

	o, err := h.load(ctx, a, in.ID, orgpolicy.CanUpdate)
	if err != nil {
		return models.Organization{}, err
	}
	if in.IsActive != nil && !a.IsAdmin() {
		return models.Organization{}, apperr.Forbidden("only administrators change the active flag")
	}

	p := store.OrganizationPatch{
		Name:     trimmed(in.Name),
		Address:  trimmed(in.Address),
		Phone:    trimmed(in.Phone),
		Email:    in.Email,
		Website:  in.Website,
		LogoURL:  in.LogoURL,
		IsActive: in.IsActive,
	}
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &e
	}
	out, err := h.Stores.Organizations.Update(ctx, o.ID, p)
	if err != nil {
		return models.Organization{}, apperr.FromStore("organization", err)
	}
	h.Audit.Admin(ctx, models.ActionOrgUpdated, "organization", o.ID, &o.ID, changed(in))
	return out, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func changed(in updateInput) map[string][]string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(in.Name != nil, "name")
	add(in.Address != nil, "address")
	add(in.Phone != nil, "phone")
	add(in.Email != nil, "email")
	add(in.Website != nil, "website")
	add(in.LogoURL != nil, "logoUrl")
	add(in.IsActive != nil, "isActive")
	return map[string][]string{"fields": fields}
}

func (h *Handler) getStats(ctx context.Context, a authz.Actor, in statsInput) (Stats, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "organizations.getStats")
	defer cancel()

	o, err := h.load(ctx, a, in.OrganizationID, orgpolicy.CanRead)
	if err != nil {
		return Stats{}, err
	}
	return h.stats(ctx, o.ID)
}

func (h *Handler) stats(ctx context.Context, orgID int64) (Stats, error) {
	var s Stats
	users := func(role models.Role) (int64, error) {
		return h.Stores.Users.Count(ctx, store.UserFilter{OrganizationID: &orgID, Role: role})
	}
	bilans := func(status models.BilanStatus) (int64, error) {
		return h.Stores.Bilans.Count(ctx, store.BilanFilter{OrganizationID: &orgID, Status: status})
	}

	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&s.TotalUsers, func() (int64, error) { return users("") }},
		{&s.TotalConsultants, func() (int64, error) { return users(models.RoleConsultant) }},
		{&s.TotalBeneficiaries, func() (int64, error) { return users(models.RoleBeneficiary) }},
		{&s.TotalBilans, func() (int64, error) { return bilans("") }},
		{&s.CompletedBilans, func() (int64, error) { return bilans(models.BilanCompleted) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return Stats{}, apperr.From(err)
		}
		*c.dst = n
	}
	for _, st := range models.BilanStatuses {
		if !st.Active() {
			continue
		}
		n, err := bilans(st)
		if err != nil {
			return Stats{}, apperr.From(err)
		}
		s.ActiveBilans += n
	}
	return s, nil
}
