// internal/app/system/limits/limits.go
package limits

// Size bounds shared by the RPC surface.
const (
	// MaxRequestBody bounds a JSON request body. Document uploads carry
	// base64 content, so this sits above MaxDocumentBytes.
	MaxRequestBody = 16 << 20 // 16 MB

	// MaxDocumentBytes bounds a decoded document upload.
	MaxDocumentBytes = 10 << 20 // 10 MB

	// DefaultAuditRows is the audit page size when the caller sends none.
	DefaultAuditRows = 50
	// MaxAuditRows caps one audit query.
	MaxAuditRows = 500
)
