package auditlog_test

import (
	"context"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/store/memstore"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/requestid"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx := context.Background()

	// These should all be no-ops, not panic
	logger.Log(ctx, models.AuditLog{Action: "test"})
	logger.LoginSuccess(ctx, models.User{ID: 1})
	logger.Logout(ctx, 1, nil)
	logger.Admin(ctx, models.ActionOrgCreated, "organization", 1, nil, nil)
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		dest    string
		wantDB  int
		wantZap int
	}{
		{auditlog.DestAll, 1, 1},
		{auditlog.DestDB, 1, 0},
		{auditlog.DestLog, 0, 1},
		{auditlog.DestOff, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			mem := memstore.New()
			core, logs := observer.New(zap.InfoLevel)
			logger := auditlog.New(mem.Set().Audit, zap.New(core), auditlog.Config{
				Auth: tt.dest, Admin: tt.dest, Workflow: tt.dest,
			})

			logger.Workflow(context.Background(), models.ActionBilanCreated, "bilan", 5, nil, nil)

			events, err := mem.Set().Audit.Find(context.Background(), store.AuditFilter{})
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if len(events) != tt.wantDB {
				t.Errorf("db events = %d, want %d", len(events), tt.wantDB)
			}
			if n := logs.FilterMessage("audit event").Len(); n != tt.wantZap {
				t.Errorf("zap events = %d, want %d", n, tt.wantZap)
			}
		})
	}
}

func TestLogger_FillsRequestMetaAndActor(t *testing.T) {
	mem := memstore.New()
	logger := auditlog.New(mem.Set().Audit, zap.NewNop(), auditlog.Config{Workflow: auditlog.DestDB})

	ctx := requestid.With(context.Background(), requestid.Meta{ID: "01HX", IP: "10.1.2.3", UserAgent: "UA"})
	ctx = auth.WithUser(ctx, &auth.SessionUser{ID: 77, Role: "CONSULTANT"})

	b := models.Bilan{ID: 9, Status: models.BilanInvestigation}
	logger.StatusChanged(ctx, b, models.BilanPreliminary)

	events, _ := mem.Set().Audit.Find(ctx, store.AuditFilter{})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.RequestID != "01HX" || e.IPAddress != "10.1.2.3" || e.UserAgent != "UA" {
		t.Errorf("request meta not recorded: %+v", e)
	}
	if e.UserID == nil || *e.UserID != 77 {
		t.Errorf("actor not recorded: %v", e.UserID)
	}
	var diff map[string]string
	if err := e.Changes.Decode(&diff); err != nil || diff["from"] != "PRELIMINARY" || diff["to"] != "INVESTIGATION" {
		t.Errorf("changes = %s (%v)", e.Changes, err)
	}
}

func TestLogger_StoreFailureIsSwallowed(t *testing.T) {
	mem := memstore.New()
	mem.FailWith(store.ErrUnavailable)
	core, logs := observer.New(zap.ErrorLevel)
	logger := auditlog.New(mem.Set().Audit, zap.New(core), auditlog.Config{Admin: auditlog.DestDB})

	logger.Admin(context.Background(), models.ActionUserUpdated, "user", 1, nil, map[string]string{"role": "CONSULTANT"})

	entries := logs.FilterMessage("failed to store audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected one error log, got %d", len(entries))
	}
	if msg, _ := entries[0].ContextMap()["error"].(string); msg == "" {
		t.Errorf("error field missing: %v", entries[0].ContextMap())
	}
}
