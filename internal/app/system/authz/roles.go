// internal/app/system/authz/roles.go
package authz

import "github.com/dalemusser/bilanhub/internal/domain/models"

// HasAnyRole reports whether the actor holds one of roles.
func (a Actor) HasAnyRole(roles ...models.Role) bool {
	for _, want := range roles {
		if a.Role == want {
			return true
		}
	}
	return false
}

// AtLeast reports whether the actor's role ranks at or above min in
// ADMIN > ORG_ADMIN > CONSULTANT > BENEFICIARY.
func (a Actor) AtLeast(min models.Role) bool {
	return a.Role.Valid() && a.Role.Rank() >= min.Rank()
}
