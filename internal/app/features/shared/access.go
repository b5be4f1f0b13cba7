// internal/app/features/shared/access.go

// Package shared holds the lookup helpers every RPC router uses to load a
// record and check the caller against it.
//
// The order is fixed: a missing record is NotFound, then a denied predicate
// is Forbidden. Store failures pass through as their own kind.
package shared

import (
	"context"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// BilanRule is a bilan policy predicate.
type BilanRule func(authz.Actor, models.Bilan) bool

// Bilan loads bilan id and checks allow.
func Bilan(ctx context.Context, bilans store.BilanStore, a authz.Actor, id int64, allow BilanRule) (models.Bilan, error) {
	b, err := bilans.GetByID(ctx, id)
	if err != nil {
		return models.Bilan{}, apperr.FromStore("bilan", err)
	}
	if !allow(a, b) {
		return models.Bilan{}, apperr.Forbidden("not allowed on this bilan")
	}
	return b, nil
}

// Record loads a bilan-owned record with get, then its parent bilan, then
// checks allow against the bilan. A record whose bilan has vanished is
// reported as NotFound for the record.
func Record[T any](ctx context.Context, bilans store.BilanStore, a authz.Actor, entity string,
	get func(context.Context) (T, error), bilanOf func(T) int64, allow BilanRule) (T, models.Bilan, error) {
	var zero T
	rec, err := get(ctx)
	if err != nil {
		return zero, models.Bilan{}, apperr.FromStore(entity, err)
	}
	b, err := bilans.GetByID(ctx, bilanOf(rec))
	if err != nil {
		return zero, models.Bilan{}, apperr.FromStore(entity, err)
	}
	if !allow(a, b) {
		return zero, models.Bilan{}, apperr.Forbidden("not allowed on this %s", entity)
	}
	return rec, b, nil
}

// User loads user id, mapping a miss to NotFound.
func User(ctx context.Context, users store.UserStore, id int64) (models.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, apperr.FromStore("user", err)
	}
	return u, nil
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// OK is the result of procedures that only report success.
type OK struct {
	Success bool `json:"success"`
}

// Done is the successful OK.
var Done = OK{Success: true}
