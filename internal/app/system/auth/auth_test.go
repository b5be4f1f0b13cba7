package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

type fakeFetcher struct {
	byID     map[int64]*auth.SessionUser
	byOpenID map[string]*auth.SessionUser
}

func (f fakeFetcher) FetchUser(_ context.Context, id int64) *auth.SessionUser { return f.byID[id] }
func (f fakeFetcher) FetchByOpenID(_ context.Context, sub string) *auth.SessionUser {
	return f.byOpenID[sub]
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	var called bool

	rec := httptest.NewRecorder()
	sm.RequireSignedIn(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest("POST", "/api/bilans/list", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Error("handler should not run")
	}
}

func TestRequireRole(t *testing.T) {
	sm := newTestSessionManager(t)

	tests := []struct {
		role     string
		expected int
	}{
		{"ADMIN", http.StatusOK},
		{"org_admin", http.StatusOK},
		{"CONSULTANT", http.StatusForbidden},
		{"BENEFICIARY", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			var called bool
			req := auth.WithTestUser(httptest.NewRequest("GET", "/metrics", nil), &auth.SessionUser{ID: 1, Role: tc.role})
			rec := httptest.NewRecorder()
			sm.RequireRole("ADMIN", "ORG_ADMIN")(okHandler(&called)).ServeHTTP(rec, req)
			if rec.Code != tc.expected {
				t.Errorf("role %q: expected status %d, got %d", tc.role, tc.expected, rec.Code)
			}
		})
	}
}

func TestLoginThenLoadSessionUser(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(fakeFetcher{byID: map[int64]*auth.SessionUser{
		42: {ID: 42, Name: "Camille", Role: "CONSULTANT"},
	}})

	loginRec := httptest.NewRecorder()
	if err := sm.Login(loginRec, httptest.NewRequest("POST", "/auth/login", nil), 42); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest("POST", "/api/users/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	var got *auth.SessionUser
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != 42 {
		t.Fatalf("expected user 42 in context, got %+v", got)
	}
}

func TestLogin_ReplacesCookieFromRotatedKey(t *testing.T) {
	old, err := auth.NewSessionManager("an-older-session-key-of-32-chars!!", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	oldRec := httptest.NewRecorder()
	if err := old.Login(oldRec, httptest.NewRequest("POST", "/auth/login", nil), 7); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	sm := newTestSessionManager(t)
	sm.SetUserFetcher(fakeFetcher{byID: map[int64]*auth.SessionUser{
		7: {ID: 7, Name: "Lou", Role: "BENEFICIARY"},
	}})

	stale := httptest.NewRequest("POST", "/api/users/me", nil)
	for _, c := range oldRec.Result().Cookies() {
		stale.AddCookie(c)
	}
	var got *auth.SessionUser
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), stale)
	if got != nil {
		t.Fatalf("stale cookie must not authenticate, got %+v", got)
	}

	rec := httptest.NewRecorder()
	if err := sm.Login(rec, stale, 7); err != nil {
		t.Fatalf("Login over stale cookie failed: %v", err)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a fresh session cookie")
	}
}

func TestLoadSessionUser_InactiveUserIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(fakeFetcher{})

	loginRec := httptest.NewRecorder()
	if err := sm.Login(loginRec, httptest.NewRequest("POST", "/auth/login", nil), 7); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/users/me", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	var ok bool
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Error("expected no user for unknown id")
	}
}

func TestLoadSessionUser_BearerToken(t *testing.T) {
	sm := newTestSessionManager(t)
	v, err := auth.NewTokenVerifier("jwt-secret", "bilanhub-test")
	if err != nil {
		t.Fatalf("NewTokenVerifier failed: %v", err)
	}
	sm.SetTokenVerifier(v)
	sm.SetUserFetcher(fakeFetcher{byOpenID: map[string]*auth.SessionUser{
		"oidc|abc": {ID: 9, Role: "BENEFICIARY"},
	}})

	tok, err := v.Sign(auth.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "oidc|abc"}}, time.Minute)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/bilans/list", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	var got *auth.SessionUser
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != 9 {
		t.Fatalf("expected user 9, got %+v", got)
	}
}

func TestTokenVerifier_RejectsWrongIssuerAndExpired(t *testing.T) {
	v, _ := auth.NewTokenVerifier("jwt-secret", "bilanhub")
	other, _ := auth.NewTokenVerifier("jwt-secret", "someone-else")

	tok, _ := other.Sign(auth.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}, time.Minute)
	if _, err := v.Verify(tok); err == nil {
		t.Error("expected wrong issuer to be rejected")
	}

	expired, _ := v.Sign(auth.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}, time.Minute)
	if _, err := v.Verify(expired); err == nil {
		t.Error("expected expired token to be rejected")
	}

	wrongKey, _ := auth.NewTokenVerifier("other-secret", "bilanhub")
	forged, _ := wrongKey.Sign(auth.IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}, time.Minute)
	if _, err := v.Verify(forged); err == nil {
		t.Error("expected bad signature to be rejected")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	user, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil))
	if ok || user != nil {
		t.Error("expected no user in context")
	}
}
