package recordpolicy

import (
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

func ptr(v int64) *int64 { return &v }

var bilan = models.Bilan{ID: 100, OrganizationID: ptr(1), ConsultantID: ptr(20), BeneficiaryID: 30}

func TestBeneficiaryRights(t *testing.T) {
	owner := authz.Actor{ID: 30, Role: models.RoleBeneficiary, OrganizationID: ptr(1)}
	other := authz.Actor{ID: 31, Role: models.RoleBeneficiary, OrganizationID: ptr(1)}

	if !CanRead(owner, bilan) || !CanSendMessage(owner, bilan) || !CanSaveSkills(owner, bilan) || !CanAnswerSurvey(owner, bilan) {
		t.Error("owner should read, message, self-assess and answer surveys")
	}
	if CanWrite(owner, bilan) || CanDeleteDocument(owner, bilan) {
		t.Error("owner must not write records or delete documents")
	}
	if CanRead(other, bilan) || CanSendMessage(other, bilan) || CanAnswerSurvey(other, bilan) {
		t.Error("another beneficiary must see nothing")
	}
}

func TestConsultantRights(t *testing.T) {
	assigned := authz.Actor{ID: 20, Role: models.RoleConsultant, OrganizationID: ptr(1)}
	colleague := authz.Actor{ID: 21, Role: models.RoleConsultant, OrganizationID: ptr(1)}

	if !CanWrite(assigned, bilan) || !CanDeleteDocument(assigned, bilan) {
		t.Error("assigned consultant should write and delete documents")
	}
	if CanAnswerSurvey(assigned, bilan) {
		t.Error("consultant must not answer the beneficiary's survey")
	}
	if CanRead(colleague, bilan) || CanDeleteDocument(colleague, bilan) {
		t.Error("unassigned consultant must see nothing")
	}
}

func TestMessageOwnership(t *testing.T) {
	m := models.Message{ID: 1, BilanID: 100, SenderID: 20, ReceiverID: 30}
	sender := authz.Actor{ID: 20, Role: models.RoleConsultant}
	receiver := authz.Actor{ID: 30, Role: models.RoleBeneficiary}
	admin := authz.Actor{ID: 1, Role: models.RoleAdmin}

	if !CanDeleteMessage(sender, m) || CanDeleteMessage(receiver, m) || CanDeleteMessage(admin, m) {
		t.Error("only the sender deletes a message")
	}
	if !CanMarkRead(receiver, m) || CanMarkRead(sender, m) || CanMarkRead(admin, m) {
		t.Error("only the receiver marks a message read")
	}
}

func TestIsParticipant(t *testing.T) {
	if !IsParticipant(bilan, 20) || !IsParticipant(bilan, 30) || IsParticipant(bilan, 5) {
		t.Error("participants are the beneficiary and the assigned consultant")
	}
	unassigned := models.Bilan{ID: 2, BeneficiaryID: 30}
	if IsParticipant(unassigned, 20) {
		t.Error("no consultant assigned")
	}
}
