// internal/domain/models/document.go
package models

import "time"

// DocumentType classifies an uploaded or generated file.
type DocumentType string

const (
	DocumentCV          DocumentType = "CV"
	DocumentCoverLetter DocumentType = "COVER_LETTER"
	DocumentSynthesis   DocumentType = "SYNTHESIS"
	DocumentReport      DocumentType = "REPORT"
	DocumentOther       DocumentType = "OTHER"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentCV, DocumentCoverLetter, DocumentSynthesis, DocumentReport, DocumentOther:
		return true
	}
	return false
}

// Document references a file held in object storage. URL is whatever the
// storage backend returned and is never rebuilt from StorageKey.
type Document struct {
	ID         int64        `bson:"_id" json:"id"`
	BilanID    int64        `bson:"bilan_id" json:"bilanId"`
	Type       DocumentType `bson:"type" json:"type"`
	Title      string       `bson:"title" json:"title"`
	FileName   string       `bson:"file_name" json:"fileName"`
	StorageKey string       `bson:"storage_key" json:"storageKey"`
	URL        string       `bson:"url" json:"url"`
	FileSize   int64        `bson:"file_size" json:"fileSize"`
	MimeType   string       `bson:"mime_type" json:"mimeType"`
	UploadedBy int64        `bson:"uploaded_by" json:"uploadedBy"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
