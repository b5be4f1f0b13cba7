// internal/domain/models/message.go
package models

import "time"

// Message is one entry in the conversation attached to a bilan.
type Message struct {
	ID         int64      `bson:"_id" json:"id"`
	BilanID    int64      `bson:"bilan_id" json:"bilanId"`
	SenderID   int64      `bson:"sender_id" json:"senderId"`
	ReceiverID int64      `bson:"receiver_id" json:"receiverId"`
	Subject    string     `bson:"subject,omitempty" json:"subject,omitempty"`
	Content    string     `bson:"content" json:"content"`
	IsRead     bool       `bson:"is_read" json:"isRead"`
	ReadAt     *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
