package login_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/features/login"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const cookieName = "test-session"

type fixture struct {
	env      *testutil.MemEnv
	h        http.Handler
	verifier *auth.TokenVerifier
}

func setup(t *testing.T, limiter *ratelimit.Limiter) *fixture {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", cookieName, "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	v, err := auth.NewTokenVerifier("test-jwt-secret", "bilanhub-test")
	if err != nil {
		t.Fatalf("NewTokenVerifier failed: %v", err)
	}
	sm.SetTokenVerifier(v)

	env := testutil.NewMemEnv(t)
	h := login.NewHandler(env.Mem.Set(), sm, limiter, env.Audit, logger)
	return &fixture{env: env, h: login.Routes(h), verifier: v}
}

func (fx *fixture) token(t *testing.T, subject, name, email string) string {
	t.Helper()
	tok, err := fx.verifier.Sign(auth.IdentityClaims{
		Name:             name,
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func sessionCookie(rec *testutil.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func auditActions(t *testing.T, fx *fixture) []string {
	t.Helper()
	logs, err := fx.env.Mem.Set().Audit.Find(context.Background(), store.AuditFilter{Category: models.AuditCategoryAuth})
	if err != nil {
		t.Fatalf("audit find: %v", err)
	}
	var out []string
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func TestLogin_FirstSignInCreatesBeneficiary(t *testing.T) {
	fx := setup(t, nil)

	rec := testutil.Call(t, fx.h, "/login", nil, map[string]any{"token": fx.token(t, "oid-1", "Bea Nef", "Bea@Example.fr")})
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		User models.User `json:"user"`
	}
	rec.DecodeResult(t, &got)
	if got.User.OpenID != "oid-1" || got.User.Role != models.RoleBeneficiary || got.User.OrganizationID != nil {
		t.Errorf("unexpected user %+v", got.User)
	}
	if got.User.Email != "bea@example.fr" {
		t.Errorf("email = %q, want folded", got.User.Email)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge <= 0 {
		t.Errorf("expected a live session cookie, got %+v", c)
	}
	if a := auditActions(t, fx); len(a) != 1 || a[0] != models.ActionLoginSuccess {
		t.Errorf("audit actions = %v", a)
	}
}

func TestLogin_ReturningUserKeepsRole(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	org := fx.env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	c := fx.env.Fixtures.CreateConsultant(ctx, "Camille Conseil", org.ID)

	rec := testutil.Call(t, fx.h, "/login", nil, map[string]any{"token": fx.token(t, c.OpenID, "Camille C.", "")})
	rec.AssertStatus(t, http.StatusOK)

	var got struct {
		User models.User `json:"user"`
	}
	rec.DecodeResult(t, &got)
	if got.User.ID != c.ID || got.User.Role != models.RoleConsultant || got.User.Name != "Camille C." {
		t.Errorf("unexpected user %+v", got.User)
	}
	if got.User.LastSignedIn == nil {
		t.Error("lastSignedIn not stamped")
	}
}

func TestLogin_Rejections(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	org := fx.env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	gone := fx.env.Fixtures.CreateBeneficiary(ctx, "Gone", org.ID)
	inactive := false
	if _, err := fx.env.Mem.Set().Users.Update(ctx, gone.ID, store.UserPatch{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	other, _ := auth.NewTokenVerifier("another-secret", "bilanhub-test")
	forged, _ := other.Sign(auth.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "oid-x"}}, time.Hour)

	testutil.Call(t, fx.h, "/login", nil, map[string]any{}).AssertError(t, http.StatusBadRequest, "VALIDATION")
	testutil.Call(t, fx.h, "/login", nil, map[string]any{"token": forged}).AssertError(t, http.StatusUnauthorized, "UNAUTHORIZED")
	testutil.Call(t, fx.h, "/login", nil, map[string]any{"token": fx.token(t, gone.OpenID, "", "")}).
		AssertError(t, http.StatusForbidden, "FORBIDDEN")

	want := []string{models.ActionLoginFailed, models.ActionLoginFailed}
	if got := auditActions(t, fx); len(got) != len(want) {
		t.Errorf("audit actions = %v, want %v", got, want)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	fx := setup(t, ratelimit.New(1, 1))
	body := map[string]any{"token": fx.token(t, "oid-1", "Bea", "")}

	testutil.Call(t, fx.h, "/login", nil, body).AssertStatus(t, http.StatusOK)
	testutil.Call(t, fx.h, "/login", nil, body).AssertError(t, http.StatusTooManyRequests, "TOO_MANY_REQUESTS")
}

func TestLogout_ExpiresCookie(t *testing.T) {
	fx := setup(t, nil)
	ctx := context.Background()
	org := fx.env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	u := fx.env.Fixtures.CreateOrgAdmin(ctx, "Olga", org.ID)

	req := testutil.WithUser(httptest.NewRequest(http.MethodPost, "/logout", nil), u)
	rec := testutil.NewRecorder()
	fx.h.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	c := sessionCookie(rec)
	if c == nil || c.MaxAge >= 0 {
		t.Errorf("expected an expired session cookie, got %+v", c)
	}
	if a := auditActions(t, fx); len(a) != 1 || a[0] != models.ActionLogout {
		t.Errorf("audit actions = %v", a)
	}

	anon := testutil.NewRecorder()
	fx.h.ServeHTTP(anon, httptest.NewRequest(http.MethodPost, "/logout", nil))
	anon.AssertStatus(t, http.StatusOK)
}
