package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store/memstore"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/metrics"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:                 "mongodb://localhost:27017",
		MongoDatabase:            "bilanhub_test",
		SessionKey:               "test-session-key-for-testing-only-0123456789",
		SessionName:              "bilanhub-session",
		SessionMaxAge:            time.Hour,
		StorageType:              "local",
		StorageLocalPath:         "./uploads",
		StorageLocalURL:          "/files",
		AIProvider:               "openai",
		AIModel:                  "gpt-4o-mini",
		OllamaURL:                "http://localhost:11434",
		OllamaModel:              "llama3.1",
		AuditLogAuth:             "all",
		AuditLogAdmin:            "db",
		AuditLogWorkflow:         "log",
		AIRateLimitPerMinute:     10,
		AIRateLimitBurst:         3,
		PublicRateLimitPerMinute: 60,
		PublicRateLimitBurst:     20,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		core    *config.CoreConfig
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://nope" }, wantErr: "MongoDB URI"},
		{name: "unknown storage", mutate: func(c *AppConfig) { c.StorageType = "ftp" }, wantErr: "storage_type"},
		{name: "s3 without bucket", mutate: func(c *AppConfig) { c.StorageType = "s3" }, wantErr: "storage_s3_bucket"},
		{name: "unknown ai provider", mutate: func(c *AppConfig) { c.AIProvider = "mistral" }, wantErr: "ai_provider"},
		{name: "ollama bad url", mutate: func(c *AppConfig) { c.AIProvider = "ollama"; c.OllamaURL = "::" }, wantErr: "ollama_url"},
		{name: "negative timeout", mutate: func(c *AppConfig) { c.TimeoutLong = -time.Second }, wantErr: "timeouts"},
		{name: "bad audit destination", mutate: func(c *AppConfig) { c.AuditLogWorkflow = "file" }, wantErr: "audit_log_workflow"},
		{
			name:    "short session key in prod",
			mutate:  func(c *AppConfig) { c.SessionKey = "short" },
			core:    &config.CoreConfig{Env: "prod"},
			wantErr: "session_key",
		},
		{name: "short session key in dev", mutate: func(c *AppConfig) { c.SessionKey = "short" }, core: &config.CoreConfig{Env: "dev"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := ValidateConfig(tc.core, cfg, testLogger())
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateConfig failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	cfg := validConfig()
	cfg.TimeoutShort = 3 * time.Second
	if err := Startup(context.Background(), nil, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if got := timeouts.Short(); got != 3*time.Second {
		t.Errorf("Short() = %v, want 3s", got)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long() = %v, want the default", got)
	}
}

func TestBuildServices_Local(t *testing.T) {
	cfg := validConfig()
	cfg.StorageLocalPath = t.TempDir()

	svc, err := BuildServices(context.Background(), cfg, metrics.New(), testLogger())
	if err != nil {
		t.Fatalf("BuildServices failed: %v", err)
	}
	if svc.LocalDir != cfg.StorageLocalPath {
		t.Errorf("LocalDir = %q, want %q", svc.LocalDir, cfg.StorageLocalPath)
	}
	if svc.Objects == nil || svc.Advisor == nil || svc.Search == nil || svc.PDF == nil || svc.AILimit == nil || svc.IPLimit == nil {
		t.Fatalf("missing service in %+v", svc)
	}

	url, err := svc.Objects.Put(context.Background(), objectstore.Key(1, "reports", "a.pdf"), []byte("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !strings.HasPrefix(url, "/files/bilans/1/reports/a-") {
		t.Errorf("url = %q", url)
	}
}

func TestBuildServices_Ollama(t *testing.T) {
	cfg := validConfig()
	cfg.StorageLocalPath = t.TempDir()
	cfg.AIProvider = "ollama"
	if _, err := BuildServices(context.Background(), cfg, nil, testLogger()); err != nil {
		t.Fatalf("BuildServices failed: %v", err)
	}

	cfg.OllamaModel = ""
	if _, err := BuildServices(context.Background(), cfg, nil, testLogger()); err == nil {
		t.Error("expected an error for a missing ollama model")
	}
}

type pingFunc func(context.Context, *readpref.ReadPref) error

func (f pingFunc) Ping(ctx context.Context, rp *readpref.ReadPref) error { return f(ctx, rp) }

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	mem := memstore.New()
	stores := mem.Set()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", time.Hour, false, testLogger())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	cfg := validConfig()
	cfg.StorageLocalPath = t.TempDir()
	svc, err := BuildServices(context.Background(), cfg, metrics.New(), testLogger())
	if err != nil {
		t.Fatalf("BuildServices failed: %v", err)
	}
	svc.PDF = pdfgen.Func(func(pdfgen.Kind, any) ([]byte, error) { return nil, errors.New("unused") })

	audit := auditlog.New(stores.Audit, testLogger(), auditlog.Config{})
	ok := pingFunc(func(context.Context, *readpref.ReadPref) error { return nil })
	return NewRouter(stores, sm, audit, svc, ok, testLogger()), testutil.NewFixtures(t, stores)
}

func TestNewRouter_Mounts(t *testing.T) {
	h, fx := newTestRouter(t)
	ctx := context.Background()
	admin := fx.CreateAdmin(ctx, "Ada Admin")

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	if rec := get("/health"); rec.Code != http.StatusOK {
		t.Errorf("/health status = %d", rec.Code)
	}
	if rec := get("/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bilanhub_http_requests_total") {
		t.Errorf("/metrics status = %d", rec.Code)
	}

	testutil.Call(t, h, "/api/users/me", nil, nil).AssertError(t, http.StatusUnauthorized, "UNAUTHORIZED")
	testutil.Call(t, h, "/api/users/me", &admin, nil).AssertStatus(t, http.StatusOK)
	testutil.Call(t, h, "/api/jobsearch/searchRome", nil, map[string]any{"skills": []string{"comptabilité"}}).
		AssertStatus(t, http.StatusOK)
	testutil.Call(t, h, "/auth/login", nil, map[string]any{"token": "x"}).
		AssertError(t, http.StatusServiceUnavailable, "UNAVAILABLE")

	for _, target := range []string{
		"/api/organizations/list",
		"/api/bilans/list",
		"/api/qualiopi/indicators",
		"/api/auditLog/list",
	} {
		rec := testutil.Call(t, h, target, nil, nil)
		if rec.Code == http.StatusNotFound {
			t.Errorf("%s is not mounted", target)
		}
	}
}

func TestNewRouter_RequestID(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := testutil.Call(t, h, "/api/users/me", nil, nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db, Stores: mongoStores(db)}
	if err := EnsureSchema(ctx, nil, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// Idempotent.
	if err := EnsureSchema(ctx, nil, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}

	org := testutil.NewFixtures(t, deps.Stores).CreateOrganization(ctx, "Cabinet Alpha")
	if org.ID == 0 {
		t.Error("expected an allocated id")
	}
}
