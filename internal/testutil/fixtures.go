package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data through any
// store.Set, in-memory or MongoDB.
type Fixtures struct {
	stores store.Set
	t      *testing.T
	seq    int
}

// NewFixtures creates a new Fixtures instance for the given stores.
func NewFixtures(t *testing.T, stores store.Set) *Fixtures {
	t.Helper()
	return &Fixtures{stores: stores, t: t}
}

// Stores returns the underlying store set for direct access in tests.
func (f *Fixtures) Stores() store.Set {
	return f.stores
}

// CreateOrganization creates an active organization with a unique SIRET.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()
	f.seq++
	org, err := f.stores.Organizations.Create(ctx, models.Organization{
		Name:     name,
		Siret:    fmt.Sprintf("%014d", 12345678900000+f.seq),
		IsActive: true,
	})
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateUser creates an active user with the given role and organization.
func (f *Fixtures) CreateUser(ctx context.Context, name string, role models.Role, orgID *int64) models.User {
	f.t.Helper()
	f.seq++
	u, err := f.stores.Users.Create(ctx, models.User{
		OpenID:         fmt.Sprintf("test|%d", f.seq),
		Name:           name,
		Email:          strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.fr",
		Role:           role,
		OrganizationID: orgID,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func (f *Fixtures) CreateAdmin(ctx context.Context, name string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleAdmin, nil)
}

func (f *Fixtures) CreateOrgAdmin(ctx context.Context, name string, orgID int64) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleOrgAdmin, &orgID)
}

func (f *Fixtures) CreateConsultant(ctx context.Context, name string, orgID int64) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleConsultant, &orgID)
}

func (f *Fixtures) CreateBeneficiary(ctx context.Context, name string, orgID int64) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, models.RoleBeneficiary, &orgID)
}

// CreateBilan creates a PRELIMINARY bilan. consultant may be nil.
func (f *Fixtures) CreateBilan(ctx context.Context, beneficiary models.User, consultant *models.User) models.Bilan {
	f.t.Helper()
	b := models.Bilan{
		BeneficiaryID:  beneficiary.ID,
		OrganizationID: beneficiary.OrganizationID,
		Objectives:     "Reconversion professionnelle",
	}
	if consultant != nil {
		id := consultant.ID
		b.ConsultantID = &id
	}
	created, err := f.stores.Bilans.Create(ctx, b)
	if err != nil {
		f.t.Fatalf("failed to create test bilan: %v", err)
	}
	return created
}

// SetBilanStatus forces a status without going through the workflow.
func (f *Fixtures) SetBilanStatus(ctx context.Context, id int64, status models.BilanStatus) models.Bilan {
	f.t.Helper()
	b, err := f.stores.Bilans.Update(ctx, id, store.BilanPatch{Status: &status})
	if err != nil {
		f.t.Fatalf("failed to set bilan status: %v", err)
	}
	return b
}
