// internal/domain/models/roles.go
package models

// Role is the single platform role a user holds.
type Role string

const (
	RoleBeneficiary Role = "BENEFICIARY"
	RoleConsultant  Role = "CONSULTANT"
	RoleOrgAdmin    Role = "ORG_ADMIN"
	RoleAdmin       Role = "ADMIN"
)

// Roles lists every role from lowest to highest privilege.
var Roles = []Role{RoleBeneficiary, RoleConsultant, RoleOrgAdmin, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBeneficiary, RoleConsultant, RoleOrgAdmin, RoleAdmin:
		return true
	}
	return false
}

// Rank orders roles by privilege (BENEFICIARY=1 .. ADMIN=4, unknown=0).
func (r Role) Rank() int {
	for i, role := range Roles {
		if role == r {
			return i + 1
		}
	}
	return 0
}
