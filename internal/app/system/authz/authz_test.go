package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

func ptr(v int64) *int64 { return &v }

func TestUserCtx_NoUser(t *testing.T) {
	if _, ok := authz.UserCtx(httptest.NewRequest("GET", "/", nil)); ok {
		t.Error("expected ok=false without a user")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{
		ID: 3, Role: "org_admin", OrganizationID: ptr(10),
	})
	a, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected user")
	}
	if a.Role != models.RoleOrgAdmin || !a.IsOrgAdmin() {
		t.Errorf("Role = %q", a.Role)
	}
	if !a.SameOrg(ptr(10)) {
		t.Error("expected same org")
	}
}

func TestFromSessionUser_UnknownRoleGetsNothing(t *testing.T) {
	a := authz.FromSessionUser(&auth.SessionUser{ID: 1, Role: "superuser"})
	if a.Role != "" {
		t.Errorf("Role = %q, want empty", a.Role)
	}
	if a.AtLeast(models.RoleBeneficiary) {
		t.Error("unknown role must not rank")
	}
}

func TestSameOrg_RequiresBothSet(t *testing.T) {
	tests := []struct {
		name  string
		actor *int64
		org   *int64
		want  bool
	}{
		{"both nil", nil, nil, false},
		{"actor nil", nil, ptr(1), false},
		{"org nil", ptr(1), nil, false},
		{"different", ptr(1), ptr(2), false},
		{"equal", ptr(1), ptr(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := authz.Actor{ID: 1, Role: models.RoleOrgAdmin, OrganizationID: tt.actor}
			if got := a.SameOrg(tt.org); got != tt.want {
				t.Errorf("SameOrg = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAtLeast_Hierarchy(t *testing.T) {
	for i, r := range models.Roles {
		a := authz.Actor{Role: r}
		for j, min := range models.Roles {
			if got, want := a.AtLeast(min), i >= j; got != want {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", r, min, got, want)
			}
		}
	}
}
