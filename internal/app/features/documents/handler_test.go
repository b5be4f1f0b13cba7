package documents_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/features/documents"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("bucket unreachable")
}

type fixture struct {
	env         *testutil.MemEnv
	blobs       *storage.Memory
	h           http.Handler
	consultant  models.User
	beneficiary models.User
	stranger    models.User
	bilan       models.Bilan
}

func setup(t *testing.T, objects objectstore.Store) *fixture {
	t.Helper()
	env := testutil.NewMemEnv(t)
	ctx := context.Background()
	org := env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	fx := &fixture{env: env}
	fx.consultant = env.Fixtures.CreateConsultant(ctx, "Camille Conseil", org.ID)
	fx.beneficiary = env.Fixtures.CreateBeneficiary(ctx, "Bea Beneficiaire", org.ID)
	fx.stranger = env.Fixtures.CreateBeneficiary(ctx, "Sam Inconnu", org.ID)
	fx.bilan = env.Fixtures.CreateBilan(ctx, fx.beneficiary, &fx.consultant)

	if objects == nil {
		fx.blobs = storage.NewMemory(storage.MemoryConfig{BaseURL: "https://files.test"})
		objects = objectstore.New(fx.blobs)
	}
	fx.h = documents.Routes(documents.NewHandler(env.Mem.Set(), objects, env.Audit, zap.NewNop()))
	return fx
}

func (fx *fixture) upload(t *testing.T, u models.User, body string) *testutil.ResponseRecorder {
	t.Helper()
	return testutil.Call(t, fx.h, "/upload", &u, map[string]any{
		"bilanId":  fx.bilan.ID,
		"type":     "CV",
		"fileName": "mon cv.pdf",
		"mimeType": "application/pdf",
		"content":  base64.StdEncoding.EncodeToString([]byte(body)),
	})
}

func TestUpload_StoresFileAndMetadata(t *testing.T) {
	fx := setup(t, nil)

	rec := fx.upload(t, fx.consultant, "%PDF-1.7 test")
	rec.AssertStatus(t, http.StatusOK)
	var d models.Document
	rec.DecodeResult(t, &d)

	prefix := "bilans/" + strconv.FormatInt(fx.bilan.ID, 10) + "/documents/mon_cv-"
	if !strings.HasPrefix(d.StorageKey, prefix) || !strings.HasSuffix(d.StorageKey, ".pdf") {
		t.Errorf("storageKey = %q, want %s…pdf", d.StorageKey, prefix)
	}
	if d.URL != "https://files.test/"+d.StorageKey {
		t.Errorf("url = %q", d.URL)
	}
	if d.FileSize != int64(len("%PDF-1.7 test")) || d.UploadedBy != fx.consultant.ID || d.Title != "mon cv.pdf" {
		t.Errorf("metadata = %+v", d)
	}
	data, err := fx.blobs.GetBytes(context.Background(), d.StorageKey)
	if err != nil || string(data) != "%PDF-1.7 test" {
		t.Errorf("stored file = %q, %v", data, err)
	}

	// The beneficiary reads what the consultant uploaded.
	rec = testutil.Call(t, fx.h, "/listByBilan", &fx.beneficiary, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertStatus(t, http.StatusOK)
	var docs []models.Document
	rec.DecodeResult(t, &docs)
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}

	rec = testutil.Call(t, fx.h, "/listByBilan", &fx.beneficiary, map[string]any{"bilanId": fx.bilan.ID, "type": "REPORT"})
	rec.DecodeResult(t, &docs)
	if len(docs) != 0 {
		t.Errorf("type filter returned %d documents", len(docs))
	}
}

func TestUpload_Rules(t *testing.T) {
	fx := setup(t, nil)

	fx.upload(t, fx.beneficiary, "x").AssertError(t, http.StatusForbidden, "FORBIDDEN")
	fx.upload(t, fx.stranger, "x").AssertError(t, http.StatusForbidden, "FORBIDDEN")

	rec := testutil.Call(t, fx.h, "/upload", &fx.consultant, map[string]any{
		"bilanId": fx.bilan.ID, "type": "PHOTO", "fileName": "a.png", "mimeType": "image/png", "content": "aGk=",
	})
	rec.AssertError(t, http.StatusBadRequest, "VALIDATION")

	rec = testutil.Call(t, fx.h, "/upload", &fx.consultant, map[string]any{
		"bilanId": fx.bilan.ID, "type": "CV", "fileName": "a.pdf", "mimeType": "application/pdf", "content": "not base64!",
	})
	rec.AssertError(t, http.StatusBadRequest, "VALIDATION")
}

func TestUpload_StorageFailureIsExternal(t *testing.T) {
	fx := setup(t, failingStore{})
	fx.upload(t, fx.consultant, "x").AssertError(t, http.StatusBadGateway, "EXTERNAL_FAILURE")

	docs, _ := fx.env.Mem.Set().Documents.ListByBilan(context.Background(), fx.bilan.ID)
	if len(docs) != 0 {
		t.Errorf("document recorded despite failed upload")
	}
}

func TestDelete_ConsultantOnly(t *testing.T) {
	fx := setup(t, nil)
	var d models.Document
	fx.upload(t, fx.consultant, "x").DecodeResult(t, &d)

	rec := testutil.Call(t, fx.h, "/delete", &fx.beneficiary, map[string]any{"id": d.ID})
	rec.AssertError(t, http.StatusForbidden, "FORBIDDEN")

	rec = testutil.Call(t, fx.h, "/delete", &fx.consultant, map[string]any{"id": d.ID})
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.Call(t, fx.h, "/delete", &fx.consultant, map[string]any{"id": d.ID})
	rec.AssertError(t, http.StatusNotFound, "NOT_FOUND")
}

func TestUpdateName(t *testing.T) {
	fx := setup(t, nil)
	var d models.Document
	fx.upload(t, fx.consultant, "x").DecodeResult(t, &d)

	rec := testutil.Call(t, fx.h, "/updateName", &fx.beneficiary, map[string]any{"id": d.ID, "fileName": "autre.pdf"})
	rec.AssertError(t, http.StatusForbidden, "FORBIDDEN")

	rec = testutil.Call(t, fx.h, "/updateName", &fx.consultant, map[string]any{"id": d.ID, "fileName": "<b>CV 2026</b>.pdf"})
	rec.AssertStatus(t, http.StatusOK)
	var got models.Document
	rec.DecodeResult(t, &got)
	if got.FileName != "CV 2026.pdf" {
		t.Errorf("fileName = %q, want %q", got.FileName, "CV 2026.pdf")
	}
	if got.StorageKey != d.StorageKey || got.URL != d.URL || got.Title != d.Title {
		t.Errorf("rename touched more than the file name: %+v", got)
	}

	stored, err := fx.env.Mem.Set().Documents.GetByID(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.FileName != "CV 2026.pdf" {
		t.Errorf("stored fileName = %q", stored.FileName)
	}

	rec = testutil.Call(t, fx.h, "/updateName", &fx.consultant, map[string]any{"id": d.ID, "fileName": "<i></i>"})
	rec.AssertError(t, http.StatusBadRequest, "VALIDATION")

	rec = testutil.Call(t, fx.h, "/updateName", &fx.consultant, map[string]any{"id": d.ID + 100, "fileName": "a.pdf"})
	rec.AssertError(t, http.StatusNotFound, "NOT_FOUND")
}
