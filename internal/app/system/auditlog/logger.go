// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/requestid"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	DestAll = "all" // store + zap
	DestDB  = "db"  // store only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config holds the destination of each audit category.
type Config struct {
	// Auth covers login, failed login and logout.
	Auth string
	// Admin covers user and organization management and Qualiopi settings.
	Admin string
	// Workflow covers bilan lifecycle, documents, reports and AI results.
	Workflow string
}

// ValidDest reports whether s is a known destination.
func ValidDest(s string) bool {
	switch s {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Logger records audit entries to the store and to zap. Writes are
// best-effort: failures are logged and never returned.
type Logger struct {
	store  store.AuditStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(s store.AuditStore, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  s,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) destination(category string) string {
	var setting string
	switch category {
	case models.AuditCategoryAuth:
		setting = l.config.Auth
	case models.AuditCategoryAdmin:
		setting = l.config.Admin
	case models.AuditCategoryWorkflow:
		setting = l.config.Workflow
	}
	if setting == "" {
		return DestAll
	}
	return setting
}

func (l *Logger) logToZap(e models.AuditLog) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("action", e.Action),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IPAddress),
		zap.String("request_id", e.RequestID),
	}
	if e.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *e.UserID))
	}
	if e.OrganizationID != nil {
		fields = append(fields, zap.Int64("organization_id", *e.OrganizationID))
	}
	if e.EntityType != "" {
		fields = append(fields, zap.String("entity_type", e.EntityType))
	}
	if e.EntityID != nil {
		fields = append(fields, zap.Int64("entity_id", *e.EntityID))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}

	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records e according to the category's destination. Request metadata
// and the acting user are filled from ctx when unset. A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, e models.AuditLog) {
	if l == nil {
		return
	}
	dest := l.destination(e.Category)
	if dest == DestOff {
		return
	}

	meta := requestid.From(ctx)
	if e.RequestID == "" {
		e.RequestID = meta.ID
	}
	if e.IPAddress == "" {
		e.IPAddress = meta.IP
	}
	if e.UserAgent == "" {
		e.UserAgent = meta.UserAgent
	}
	if e.UserID == nil {
		if u, ok := auth.UserFromContext(ctx); ok {
			id := u.ID
			e.UserID = &id
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if dest == DestAll || dest == DestLog {
		l.logToZap(e)
	}
	if (dest == DestAll || dest == DestDB) && l.store != nil {
		// Detached so a cancelled request still leaves its trail.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.store.Log(sctx, e); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("action", e.Action),
			)
		}
	}
}

func changes(l *Logger, v any) models.Blob {
	b, err := models.EncodeBlob(v)
	if err != nil {
		l.zapLog.Warn("audit changes not encodable", zap.Error(err))
		return ""
	}
	return b
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, u models.User) {
	if l == nil {
		return
	}
	id := u.ID
	l.Log(ctx, models.AuditLog{
		Category:       models.AuditCategoryAuth,
		Action:         models.ActionLoginSuccess,
		EntityType:     "user",
		EntityID:       &id,
		UserID:         &id,
		OrganizationID: u.OrganizationID,
		Success:        true,
	})
}

// LoginFailed logs a rejected sign-in attempt.
func (l *Logger) LoginFailed(ctx context.Context, reason string) {
	l.Log(ctx, models.AuditLog{
		Category:      models.AuditCategoryAuth,
		Action:        models.ActionLoginFailed,
		Success:       false,
		FailureReason: reason,
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, userID int64, orgID *int64) {
	l.Log(ctx, models.AuditLog{
		Category:       models.AuditCategoryAuth,
		Action:         models.ActionLogout,
		UserID:         &userID,
		OrganizationID: orgID,
		Success:        true,
	})
}

// --- Admin and workflow events ---

// Admin logs a successful administrative change to entityType/entityID.
// diff is any JSON-encodable description of the change.
func (l *Logger) Admin(ctx context.Context, action, entityType string, entityID int64, orgID *int64, diff any) {
	if l == nil {
		return
	}
	l.Log(ctx, models.AuditLog{
		Category:       models.AuditCategoryAdmin,
		Action:         action,
		EntityType:     entityType,
		EntityID:       &entityID,
		OrganizationID: orgID,
		Changes:        changes(l, diff),
		Success:        true,
	})
}

// Workflow logs a successful change to a bilan or one of its records.
func (l *Logger) Workflow(ctx context.Context, action, entityType string, entityID int64, orgID *int64, diff any) {
	if l == nil {
		return
	}
	l.Log(ctx, models.AuditLog{
		Category:       models.AuditCategoryWorkflow,
		Action:         action,
		EntityType:     entityType,
		EntityID:       &entityID,
		OrganizationID: orgID,
		Changes:        changes(l, diff),
		Success:        true,
	})
}

// StatusChanged logs a bilan status transition.
func (l *Logger) StatusChanged(ctx context.Context, b models.Bilan, from models.BilanStatus) {
	l.Workflow(ctx, models.ActionBilanStatus, "bilan", b.ID, b.OrganizationID, map[string]string{
		"from": string(from),
		"to":   string(b.Status),
	})
}

// ConsultantAssigned logs a consultant assignment.
func (l *Logger) ConsultantAssigned(ctx context.Context, b models.Bilan, previous *int64) {
	diff := map[string]string{"consultant_id": strconv.FormatInt(*b.ConsultantID, 10)}
	if previous != nil {
		diff["previous_consultant_id"] = strconv.FormatInt(*previous, 10)
	}
	l.Workflow(ctx, models.ActionConsultantAssign, "bilan", b.ID, b.OrganizationID, diff)
}
