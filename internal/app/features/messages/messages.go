// internal/app/features/messages/messages.go
package messages

import (
	"context"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/bilanpolicy"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type sendInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
	// ReceiverID defaults to the other participant of the bilan.
	ReceiverID *int64 `json:"receiverId" validate:"omitempty,min=1"`
	Subject    string `json:"subject" validate:"max=200"`
	Content    string `json:"content" validate:"required,max=20000"`
}

type bilanInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
}

type messageInput struct {
	MessageID int64 `json:"messageId" validate:"required,min=1"`
}

type countInput struct {
	BilanID *int64 `json:"bilanId" validate:"omitempty,min=1"`
}

// Conversation is the latest message of a bilan the caller takes part in.
type Conversation struct {
	BilanID     int64          `json:"bilanId"`
	LastMessage models.Message `json:"lastMessage"`
	UnreadCount int            `json:"unreadCount"`
}

type markResult struct {
	Updated int64 `json:"updated"`
}

// send posts a message on the bilan. The receiver must be the beneficiary or
// the assigned consultant, and not the sender.
func (h *Handler) send(ctx context.Context, a authz.Actor, in sendInput) (models.Message, error) {
	content := htmlsanitize.Sanitize(in.Content)
	if content == "" {
		return models.Message{}, apperr.ValidationFields(map[string]string{"content": "is empty once sanitized"})
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "messages.send")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanSendMessage)
	if err != nil {
		return models.Message{}, err
	}

	var receiver int64
	switch {
	case in.ReceiverID != nil:
		receiver = *in.ReceiverID
	case b.BeneficiaryID == a.ID && b.ConsultantID != nil:
		receiver = *b.ConsultantID
	case b.BeneficiaryID != a.ID:
		receiver = b.BeneficiaryID
	default:
		return models.Message{}, apperr.Conflict("this bilan has no consultant to write to yet")
	}
	if receiver == a.ID || !recordpolicy.IsParticipant(b, receiver) {
		return models.Message{}, apperr.Conflict("receiver must be another participant of the bilan")
	}

	m, err := h.Stores.Messages.Create(ctx, models.Message{
		BilanID:    b.ID,
		SenderID:   a.ID,
		ReceiverID: receiver,
		Subject:    htmlsanitize.StripTags(in.Subject),
		Content:    content,
	})
	if err != nil {
		return models.Message{}, apperr.From(err)
	}
	return m, nil
}

func (h *Handler) listByBilan(ctx context.Context, a authz.Actor, in bilanInput) ([]models.Message, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "messages.listByBilan")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	out, err := h.Stores.Messages.ListByBilan(ctx, b.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

// listConversations returns, for each visible bilan where the caller sent or
// received a message, the latest such message and the caller's unread count.
func (h *Handler) listConversations(ctx context.Context, a authz.Actor, _ rpc.Empty) ([]Conversation, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "messages.listConversations")
	defer cancel()

	out := []Conversation{}
	scope, ok := bilanpolicy.ScopeFor(a)
	if !ok {
		return out, nil
	}
	bilans, err := h.Stores.Bilans.Find(ctx, scope)
	if err != nil {
		return nil, apperr.From(err)
	}
	for _, b := range bilans {
		msgs, err := h.Stores.Messages.ListByBilan(ctx, b.ID)
		if err != nil {
			return nil, apperr.From(err)
		}
		var conv *Conversation
		for _, m := range msgs {
			if m.SenderID != a.ID && m.ReceiverID != a.ID {
				continue
			}
			if conv == nil {
				conv = &Conversation{BilanID: b.ID, LastMessage: m}
			}
			if m.ReceiverID == a.ID && !m.IsRead {
				conv.UnreadCount++
			}
		}
		if conv != nil {
			out = append(out, *conv)
		}
	}
	sortConversations(out)
	return out, nil
}

func (h *Handler) markAsRead(ctx context.Context, a authz.Actor, in messageInput) (models.Message, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "messages.markAsRead")
	defer cancel()

	m, err := h.Stores.Messages.GetByID(ctx, in.MessageID)
	if err != nil {
		return models.Message{}, apperr.FromStore("message", err)
	}
	if !recordpolicy.CanMarkRead(a, m) {
		return models.Message{}, apperr.Forbidden("only the receiver can mark a message as read")
	}
	if m.IsRead {
		return m, nil
	}
	out, err := h.Stores.Messages.MarkRead(ctx, m.ID, time.Now().UTC())
	if err != nil {
		return models.Message{}, apperr.FromStore("message", err)
	}
	return out, nil
}

// markBilanAsRead marks every message the caller received on the bilan as read.
func (h *Handler) markBilanAsRead(ctx context.Context, a authz.Actor, in bilanInput) (markResult, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "messages.markBilanAsRead")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return markResult{}, err
	}
	n, err := h.Stores.Messages.MarkBilanRead(ctx, b.ID, a.ID, time.Now().UTC())
	if err != nil {
		return markResult{}, apperr.From(err)
	}
	return markResult{Updated: n}, nil
}

// countUnread counts the caller's unread messages, optionally for one bilan.
func (h *Handler) countUnread(ctx context.Context, a authz.Actor, in countInput) (int64, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "messages.countUnread")
	defer cancel()

	n, err := h.Stores.Messages.CountUnread(ctx, a.ID, in.BilanID)
	if err != nil {
		return 0, apperr.From(err)
	}
	return n, nil
}

func (h *Handler) delete(ctx context.Context, a authz.Actor, in messageInput) (shared.OK, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "messages.delete")
	defer cancel()

	m, err := h.Stores.Messages.GetByID(ctx, in.MessageID)
	if err != nil {
		return shared.OK{}, apperr.FromStore("message", err)
	}
	if !recordpolicy.CanDeleteMessage(a, m) {
		return shared.OK{}, apperr.Forbidden("only the sender can delete a message")
	}
	if err := h.Stores.Messages.Delete(ctx, m.ID); err != nil {
		return shared.OK{}, apperr.FromStore("message", err)
	}
	return shared.Done, nil
}
