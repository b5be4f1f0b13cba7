package auditlog_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/features/auditlog"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
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
	fx := &fixture{}
	fx.alpha = env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	fx.beta = env.Fixtures.CreateOrganization(ctx, "Cabinet Beta")
	fx.admin = env.Fixtures.CreateAdmin(ctx, "Ada Admin")
	fx.orgAdmin = env.Fixtures.CreateOrgAdmin(ctx, "Olga Orgadmin", fx.alpha.ID)
	fx.consultant = env.Fixtures.CreateConsultant(ctx, "Camille Conseil", fx.alpha.ID)

	env.Audit.Admin(ctx, models.ActionOrgUpdated, "organization", fx.alpha.ID, &fx.alpha.ID, map[string]string{"name": "Alpha"})
	env.Audit.Admin(ctx, models.ActionOrgUpdated, "organization", fx.beta.ID, &fx.beta.ID, map[string]string{"name": "Beta"})
	env.Audit.LoginSuccess(ctx, fx.orgAdmin)
	env.Audit.LoginFailed(ctx, "invalid token")

	fx.h = auditlog.Routes(auditlog.NewHandler(env.Mem.Set(), zap.NewNop()))
	return fx
}

func list(t *testing.T, fx *fixture, u models.User, body any) []models.AuditLog {
	t.Helper()
	rec := testutil.Call(t, fx.h, "/list", &u, body)
	rec.AssertStatus(t, http.StatusOK)
	var got []models.AuditLog
	rec.DecodeResult(t, &got)
	return got
}

func TestList_AdminSeesAll(t *testing.T) {
	fx := setup(t)
	if got := list(t, fx, fx.admin, nil); len(got) != 4 {
		t.Errorf("got %d entries, want 4", len(got))
	}
	if got := list(t, fx, fx.admin, map[string]any{"category": "auth"}); len(got) != 2 {
		t.Errorf("auth category: got %d entries, want 2", len(got))
	}
	if got := list(t, fx, fx.admin, map[string]any{"limit": 1}); len(got) != 1 {
		t.Errorf("limit: got %d entries, want 1", len(got))
	}
}

func TestList_OrgAdminPinnedToOwnOrg(t *testing.T) {
	fx := setup(t)
	got := list(t, fx, fx.orgAdmin, nil)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.OrganizationID == nil || *e.OrganizationID != fx.alpha.ID {
			t.Errorf("entry %d leaked from organization %v", e.ID, e.OrganizationID)
		}
	}
	testutil.Call(t, fx.h, "/list", &fx.orgAdmin, map[string]any{"organizationId": fx.beta.ID}).
		AssertError(t, http.StatusForbidden, "FORBIDDEN")
}

func TestList_Refused(t *testing.T) {
	fx := setup(t)
	testutil.Call(t, fx.h, "/list", &fx.consultant, nil).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/list", nil, nil).AssertError(t, http.StatusUnauthorized, "UNAUTHORIZED")
	testutil.Call(t, fx.h, "/list", &fx.admin, map[string]any{"category": "misc"}).
		AssertError(t, http.StatusBadRequest, "VALIDATION")
}
