package bilanpolicy

import (
	"fmt"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

func ptr(v int64) *int64 { return &v }

// bilan 100 belongs to org 1, consultant 20, beneficiary 30.
var bilan = models.Bilan{ID: 100, OrganizationID: ptr(1), ConsultantID: ptr(20), BeneficiaryID: 30}

type relation struct {
	name  string
	actor func(role models.Role) authz.Actor
}

var relations = []relation{
	{"participant same org", func(r models.Role) authz.Actor {
		switch r {
		case models.RoleConsultant:
			return authz.Actor{ID: 20, Role: r, OrganizationID: ptr(1)}
		case models.RoleBeneficiary:
			return authz.Actor{ID: 30, Role: r, OrganizationID: ptr(1)}
		}
		return authz.Actor{ID: 5, Role: r, OrganizationID: ptr(1)}
	}},
	{"stranger same org", func(r models.Role) authz.Actor {
		return authz.Actor{ID: 99, Role: r, OrganizationID: ptr(1)}
	}},
	{"stranger other org", func(r models.Role) authz.Actor {
		return authz.Actor{ID: 99, Role: r, OrganizationID: ptr(2)}
	}},
	{"stranger no org", func(r models.Role) authz.Actor {
		return authz.Actor{ID: 99, Role: r}
	}},
}

func TestCanRead_CrossProduct(t *testing.T) {
	// want[role][relation index]
	want := map[models.Role][]bool{
		models.RoleAdmin:       {true, true, true, true},
		models.RoleOrgAdmin:    {true, true, false, false},
		models.RoleConsultant:  {true, false, false, false},
		models.RoleBeneficiary: {true, false, false, false},
		"":                     {false, false, false, false},
	}
	for role, expected := range want {
		for i, rel := range relations {
			a := rel.actor(role)
			t.Run(fmt.Sprintf("%s/%s", role, rel.name), func(t *testing.T) {
				if got := CanRead(a, bilan); got != expected[i] {
					t.Errorf("CanRead = %v, want %v", got, expected[i])
				}
				if CanWrite(a, bilan) && !CanRead(a, bilan) {
					t.Error("write granted without read")
				}
			})
		}
	}
}

func TestCanWrite_BeneficiaryNever(t *testing.T) {
	owner := authz.Actor{ID: 30, Role: models.RoleBeneficiary, OrganizationID: ptr(1)}
	if CanWrite(owner, bilan) || CanTransition(owner, bilan) {
		t.Error("beneficiary must not write or transition")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		actor authz.Actor
		want  bool
	}{
		{"assigned consultant", authz.Actor{ID: 20, Role: models.RoleConsultant}, true},
		{"unassigned consultant same org", authz.Actor{ID: 21, Role: models.RoleConsultant, OrganizationID: ptr(1)}, false},
		{"org admin same org", authz.Actor{ID: 5, Role: models.RoleOrgAdmin, OrganizationID: ptr(1)}, true},
		{"org admin other org", authz.Actor{ID: 5, Role: models.RoleOrgAdmin, OrganizationID: ptr(2)}, false},
		{"admin", authz.Actor{ID: 1, Role: models.RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.actor, bilan); got != tt.want {
				t.Errorf("CanTransition = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteAndAssign(t *testing.T) {
	consultant := authz.Actor{ID: 20, Role: models.RoleConsultant, OrganizationID: ptr(1)}
	orgAdmin := authz.Actor{ID: 5, Role: models.RoleOrgAdmin, OrganizationID: ptr(1)}
	otherOrgAdmin := authz.Actor{ID: 6, Role: models.RoleOrgAdmin, OrganizationID: ptr(2)}

	if CanDelete(consultant, bilan) || CanAssignConsultant(consultant, bilan) {
		t.Error("assigned consultant must not delete or assign")
	}
	if !CanDelete(orgAdmin, bilan) || !CanAssignConsultant(orgAdmin, bilan) {
		t.Error("org admin of the bilan's org should delete and assign")
	}
	if CanDelete(otherOrgAdmin, bilan) {
		t.Error("org admin of another org must not delete")
	}

	orphan := models.Bilan{ID: 101, BeneficiaryID: 30}
	noOrgAdmin := authz.Actor{ID: 7, Role: models.RoleOrgAdmin}
	if CanDelete(noOrgAdmin, orphan) {
		t.Error("same org requires both ids to be set")
	}
}

func TestCanCreate(t *testing.T) {
	for role, want := range map[models.Role]bool{
		models.RoleAdmin: true, models.RoleOrgAdmin: true, models.RoleConsultant: true, models.RoleBeneficiary: false,
	} {
		if got := CanCreate(authz.Actor{Role: role}); got != want {
			t.Errorf("CanCreate(%s) = %v, want %v", role, got, want)
		}
	}
}

func TestRestrict_NeverWidens(t *testing.T) {
	beneficiary := authz.Actor{ID: 30, Role: models.RoleBeneficiary}
	consultant := authz.Actor{ID: 20, Role: models.RoleConsultant}
	orgAdmin := authz.Actor{ID: 5, Role: models.RoleOrgAdmin, OrganizationID: ptr(1)}

	tests := []struct {
		name      string
		actor     authz.Actor
		requested store.BilanFilter
		wantOK    bool
		check     func(store.BilanFilter) bool
	}{
		{"beneficiary empty request", beneficiary, store.BilanFilter{}, true,
			func(f store.BilanFilter) bool { return f.BeneficiaryID != nil && *f.BeneficiaryID == 30 }},
		{"beneficiary asks for another", beneficiary, store.BilanFilter{BeneficiaryID: ptr(31)}, true,
			func(f store.BilanFilter) bool { return *f.BeneficiaryID == 30 }},
		{"beneficiary narrows by consultant", beneficiary, store.BilanFilter{ConsultantID: ptr(20)}, true,
			func(f store.BilanFilter) bool { return *f.BeneficiaryID == 30 && *f.ConsultantID == 20 }},
		{"consultant asks for another consultant", consultant, store.BilanFilter{ConsultantID: ptr(21)}, true,
			func(f store.BilanFilter) bool { return *f.ConsultantID == 20 }},
		{"consultant narrows by org", consultant, store.BilanFilter{OrganizationID: ptr(4)}, true,
			func(f store.BilanFilter) bool { return *f.ConsultantID == 20 && *f.OrganizationID == 4 }},
		{"org admin asks for another org", orgAdmin, store.BilanFilter{OrganizationID: ptr(2)}, true,
			func(f store.BilanFilter) bool { return *f.OrganizationID == 1 }},
		{"org admin narrows by status", orgAdmin, store.BilanFilter{Status: models.BilanCompleted}, true,
			func(f store.BilanFilter) bool { return *f.OrganizationID == 1 && f.Status == models.BilanCompleted }},
		{"org admin without org", authz.Actor{ID: 8, Role: models.RoleOrgAdmin}, store.BilanFilter{}, false, nil},
		{"unknown role", authz.Actor{ID: 9}, store.BilanFilter{}, false, nil},
		{"admin passes through", authz.Actor{ID: 1, Role: models.RoleAdmin}, store.BilanFilter{OrganizationID: ptr(3)}, true,
			func(f store.BilanFilter) bool { return *f.OrganizationID == 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Restrict(tt.actor, tt.requested)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !tt.check(got) {
				t.Errorf("unexpected filter %+v", got)
			}
		})
	}
}

func TestRestrict_DoesNotAliasScope(t *testing.T) {
	a := authz.Actor{ID: 30, Role: models.RoleBeneficiary}
	requested := store.BilanFilter{BeneficiaryID: ptr(31)}
	got, _ := Restrict(a, requested)
	*got.BeneficiaryID = 99
	if *requested.BeneficiaryID != 31 {
		t.Errorf("requested filter mutated: %d", *requested.BeneficiaryID)
	}
	again, _ := Restrict(a, store.BilanFilter{})
	if *again.BeneficiaryID != 30 {
		t.Errorf("scope leaked a shared pointer: %d", *again.BeneficiaryID)
	}
}
