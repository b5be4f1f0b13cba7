// internal/domain/models/auditlog.go
package models

import "time"

// Audit categories. Each category has its own logging destination setting.
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryAdmin    = "admin"
	AuditCategoryWorkflow = "workflow"
)

// Audit actions.
const (
	ActionLoginSuccess = "login_success"
	ActionLoginFailed  = "login_failed"
	ActionLogout       = "logout"

	ActionUserUpdated       = "user_updated"
	ActionUserDeactivated   = "user_deactivated"
	ActionUserOrgAssigned   = "user_org_assigned"
	ActionOrgCreated        = "org_created"
	ActionOrgUpdated        = "org_updated"
	ActionIndicatorUpdated  = "qualiopi_indicator_updated"
	ActionBilanCreated      = "bilan_created"
	ActionBilanUpdated      = "bilan_updated"
	ActionBilanDeleted      = "bilan_deleted"
	ActionBilanStatus       = "bilan_status_changed"
	ActionConsultantAssign  = "consultant_assigned"
	ActionDocumentUploaded  = "document_uploaded"
	ActionDocumentDeleted   = "document_deleted"
	ActionDocumentRenamed   = "document_renamed"
	ActionReportGenerated   = "report_generated"
	ActionAIResultGenerated = "ai_result_generated"
)

// AuditLog is an append-only record of who did what to which entity.
// UserID is the acting user; Changes holds a JSON payload describing the edit.
type AuditLog struct {
	ID             int64     `bson:"_id" json:"id"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	Category       string    `bson:"category" json:"category"`
	Action         string    `bson:"action" json:"action"`
	EntityType     string    `bson:"entity_type,omitempty" json:"entityType,omitempty"`
	EntityID       *int64    `bson:"entity_id,omitempty" json:"entityId,omitempty"`
	OrganizationID *int64    `bson:"organization_id,omitempty" json:"organizationId,omitempty"`
	UserID         *int64    `bson:"user_id,omitempty" json:"userId,omitempty"`
	Changes        Blob      `bson:"changes,omitempty" json:"changes,omitempty"`
	IPAddress      string    `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	UserAgent      string    `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	RequestID      string    `bson:"request_id,omitempty" json:"requestId,omitempty"`
	Success        bool      `bson:"success" json:"success"`
	FailureReason  string    `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
}
