// Package recordpolicy provides authorization predicates for the records a
// bilan owns: sessions, documents, messages, recommendations, skills
// evaluations and satisfaction surveys.
//
// Records follow their bilan: whoever reads the bilan reads its records and
// whoever writes it writes them. Beneficiaries may additionally message,
// self-assess and answer surveys on their own bilan.
package recordpolicy

import (
	"github.com/dalemusser/bilanhub/internal/app/policy/bilanpolicy"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// CanRead reports whether the actor may see records of the bilan.
func CanRead(a authz.Actor, b models.Bilan) bool {
	return bilanpolicy.CanRead(a, b)
}

// CanWrite reports whether the actor may create or change records of the
// bilan: sessions, documents, recommendations, surveys, skill validation.
func CanWrite(a authz.Actor, b models.Bilan) bool {
	return bilanpolicy.CanWrite(a, b)
}

// CanDeleteDocument is limited to the assigned consultant, org admins of
// the bilan's org and admins.
func CanDeleteDocument(a authz.Actor, b models.Bilan) bool {
	return bilanpolicy.CanWrite(a, b)
}

// CanSendMessage reports whether the actor may post on the bilan.
func CanSendMessage(a authz.Actor, b models.Bilan) bool {
	return bilanpolicy.CanRead(a, b)
}

// CanSaveSkills reports whether the actor may record skills evaluations.
func CanSaveSkills(a authz.Actor, b models.Bilan) bool {
	return bilanpolicy.CanRead(a, b)
}

// CanAnswerSurvey is reserved to the bilan's beneficiary.
func CanAnswerSurvey(a authz.Actor, b models.Bilan) bool {
	return a.IsBeneficiary() && b.BeneficiaryID == a.ID
}

// CanDeleteMessage is reserved to the sender.
func CanDeleteMessage(a authz.Actor, m models.Message) bool {
	return a.Role.Valid() && m.SenderID == a.ID
}

// CanMarkRead is reserved to the receiver.
func CanMarkRead(a authz.Actor, m models.Message) bool {
	return a.Role.Valid() && m.ReceiverID == a.ID
}

// IsParticipant reports whether userID is the bilan's beneficiary or its
// assigned consultant.
func IsParticipant(b models.Bilan, userID int64) bool {
	return b.BeneficiaryID == userID || (b.ConsultantID != nil && *b.ConsultantID == userID)
}
