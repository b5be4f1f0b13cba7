package organizations_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/features/organizations"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	env        *testutil.MemEnv
	h          http.Handler
	admin      models.User
	orgAdmin   models.User
	consultant models.User
	alpha      models.Organization
	beta       models.Organization
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewMemEnv(t)
	ctx := context.Background()
	fx := &fixture{env: env}
	fx.alpha = env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	fx.beta = env.Fixtures.CreateOrganization(ctx, "Cabinet Beta")
	fx.admin = env.Fixtures.CreateAdmin(ctx, "Ada Admin")
	fx.orgAdmin = env.Fixtures.CreateOrgAdmin(ctx, "Olga Orgadmin", fx.alpha.ID)
	fx.consultant = env.Fixtures.CreateConsultant(ctx, "Camille Conseil", fx.alpha.ID)
	fx.h = organizations.Routes(organizations.NewHandler(env.Mem.Set(), env.Audit, zap.NewNop()))
	return fx
}

func TestList_Scoped(t *testing.T) {
	fx := setup(t)

	tests := []struct {
		name string
		user models.User
		want int
	}{
		{"admin sees all", fx.admin, 2},
		{"org admin sees own", fx.orgAdmin, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.Call(t, fx.h, "/list", &tc.user, nil)
			rec.AssertStatus(t, http.StatusOK)
			var got []models.Organization
			rec.DecodeResult(t, &got)
			if len(got) != tc.want {
				t.Errorf("got %d organizations, want %d", len(got), tc.want)
			}
		})
	}

	testutil.Call(t, fx.h, "/list", &fx.consultant, nil).AssertError(t, http.StatusForbidden, "FORBIDDEN")
}

func TestGetByID_NotFoundBeforeForbidden(t *testing.T) {
	fx := setup(t)
	testutil.Call(t, fx.h, "/getById", &fx.orgAdmin, map[string]any{"id": 999}).AssertError(t, http.StatusNotFound, "NOT_FOUND")
	testutil.Call(t, fx.h, "/getById", &fx.orgAdmin, map[string]any{"id": fx.beta.ID}).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/getById", &fx.orgAdmin, map[string]any{"id": fx.alpha.ID}).AssertStatus(t, http.StatusOK)
}

func TestCreate(t *testing.T) {
	fx := setup(t)
	body := map[string]any{"name": "Cabinet Gamma", "siret": "12345678901234", "email": "Contact@Gamma.fr"}

	testutil.Call(t, fx.h, "/create", &fx.orgAdmin, body).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/create", &fx.admin, map[string]any{"name": "X", "siret": "123"}).AssertError(t, http.StatusBadRequest, "VALIDATION")

	rec := testutil.Call(t, fx.h, "/create", &fx.admin, body)
	rec.AssertStatus(t, http.StatusOK)
	var o models.Organization
	rec.DecodeResult(t, &o)
	if !o.IsActive || o.Email != "contact@gamma.fr" {
		t.Errorf("got %+v", o)
	}

	testutil.Call(t, fx.h, "/create", &fx.admin, body).AssertError(t, http.StatusConflict, "CONFLICT")
}

func TestUpdate(t *testing.T) {
	fx := setup(t)

	rec := testutil.Call(t, fx.h, "/update", &fx.orgAdmin, map[string]any{"id": fx.alpha.ID, "phone": " 01 23 45 67 89 "})
	rec.AssertStatus(t, http.StatusOK)
	var o models.Organization
	rec.DecodeResult(t, &o)
	if o.Phone != "01 23 45 67 89" {
		t.Errorf("phone = %q", o.Phone)
	}

	testutil.Call(t, fx.h, "/update", &fx.orgAdmin, map[string]any{"id": fx.beta.ID, "phone": "0"}).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/update", &fx.orgAdmin, map[string]any{"id": fx.alpha.ID, "isActive": false}).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/update", &fx.admin, map[string]any{"id": fx.beta.ID, "isActive": false}).AssertStatus(t, http.StatusOK)
}

func TestGetStats(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	b1 := fx.env.Fixtures.CreateBeneficiary(ctx, "Bea", fx.alpha.ID)
	b2 := fx.env.Fixtures.CreateBeneficiary(ctx, "Bruno", fx.alpha.ID)
	fx.env.Fixtures.CreateBilan(ctx, b1, &fx.consultant)
	done := fx.env.Fixtures.CreateBilan(ctx, b2, &fx.consultant)
	fx.env.Fixtures.SetBilanStatus(ctx, done.ID, models.BilanCompleted)
	fx.env.Fixtures.CreateBeneficiary(ctx, "Autre", fx.beta.ID)

	rec := testutil.Call(t, fx.h, "/getStats", &fx.orgAdmin, map[string]any{"organizationId": fx.alpha.ID})
	rec.AssertStatus(t, http.StatusOK)
	var s organizations.Stats
	rec.DecodeResult(t, &s)

	want := organizations.Stats{
		TotalUsers:         4,
		TotalConsultants:   1,
		TotalBeneficiaries: 2,
		TotalBilans:        2,
		ActiveBilans:       1,
		CompletedBilans:    1,
	}
	if s != want {
		t.Errorf("stats = %+v, want %+v", s, want)
	}

	testutil.Call(t, fx.h, "/getStats", &fx.orgAdmin, map[string]any{"organizationId": fx.beta.ID}).AssertError(t, http.StatusForbidden, "FORBIDDEN")
}
