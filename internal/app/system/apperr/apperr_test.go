package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
)

func TestFrom_MapsStoreSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"not found", store.ErrNotFound, apperr.KindNotFound},
		{"wrapped duplicate", fmt.Errorf("%w: E11000", store.ErrDuplicate), apperr.KindConflict},
		{"unavailable", fmt.Errorf("%w: dial tcp", store.ErrUnavailable), apperr.KindUnavailable},
		{"unknown", errors.New("boom"), apperr.KindInternal},
		{"typed passthrough", apperr.Forbidden("no"), apperr.KindForbidden},
		{"wrapped typed", fmt.Errorf("ctx: %w", apperr.Conflict("bad state")), apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.From(tt.err).Kind; got != tt.want {
				t.Errorf("From(%v).Kind = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := map[apperr.Kind]int{
		apperr.KindValidation:      http.StatusBadRequest,
		apperr.KindUnauthorized:    http.StatusUnauthorized,
		apperr.KindForbidden:       http.StatusForbidden,
		apperr.KindNotFound:        http.StatusNotFound,
		apperr.KindConflict:        http.StatusConflict,
		apperr.KindRateLimited:     http.StatusTooManyRequests,
		apperr.KindExternalFailure: http.StatusBadGateway,
		apperr.KindUnavailable:     http.StatusServiceUnavailable,
		apperr.KindInternal:        http.StatusInternalServerError,
	}
	for k, want := range tests {
		if got := k.HTTPStatus(); got != want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", k.Code(), got, want)
		}
	}
}

func TestFromStore_NamesEntity(t *testing.T) {
	e := apperr.FromStore("bilan", store.ErrNotFound)
	if e.Kind != apperr.KindNotFound || e.Message != "bilan not found" {
		t.Errorf("got %v %q", e.Kind, e.Message)
	}
	if !errors.Is(e, store.ErrNotFound) {
		t.Error("expected cause to be preserved")
	}
}

func TestExternal_HidesCause(t *testing.T) {
	e := apperr.External("gemini", errors.New("401 invalid key sk-xyz"))
	if e.Message != "gemini request failed" {
		t.Errorf("Message = %q", e.Message)
	}
	if !apperr.Is(e, apperr.KindExternalFailure) {
		t.Error("expected ExternalFailure")
	}
}
