package testutil

import (
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/store/memstore"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// MemEnv is an in-memory store with fixtures and an audit logger writing to it.
type MemEnv struct {
	Mem      *memstore.Store
	Fixtures *Fixtures
	Audit    *auditlog.Logger
}

// NewMemEnv builds a MemEnv for handler tests.
func NewMemEnv(t *testing.T) *MemEnv {
	t.Helper()
	mem := memstore.New()
	stores := mem.Set()
	return &MemEnv{
		Mem:      mem,
		Fixtures: NewFixtures(t, stores),
		Audit:    auditlog.New(stores.Audit, zap.NewNop(), auditlog.Config{}),
	}
}
