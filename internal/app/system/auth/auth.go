// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is the signed-in user injected into r.Context().
// Role holds the models.Role value as a string.
type SessionUser struct {
	ID             int64
	Name           string
	Email          string
	Role           string
	OrganizationID *int64
}

// UserFetcher resolves the current user record on every request so role
// changes and deactivations apply immediately. Implementations return nil
// for missing or inactive users.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID int64) *SessionUser
	FetchByOpenID(ctx context.Context, openID string) *SessionUser
}

// SessionManager owns the cookie store and the identity token verifier.
type SessionManager struct {
	store    *sessions.CookieStore
	name     string
	fetcher  UserFetcher
	verifier *TokenVerifier
	logger   *zap.Logger
}

// NewSessionManager creates the cookie session store.
//
// In production (secure=true) cookies are Secure + SameSite=None so the API
// can be called cross-site over HTTPS. In local dev over http://localhost use
// secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "bilanhub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetUserFetcher wires the user lookup used by LoadSessionUser.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetTokenVerifier enables bearer-token authentication.
func (sm *SessionManager) SetTokenVerifier(v *TokenVerifier) { sm.verifier = v }

// Verifier returns the configured token verifier, or nil.
func (sm *SessionManager) Verifier() *TokenVerifier { return sm.verifier }

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helpers                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	return UserFromContext(r.Context())
}

// UserFromContext is CurrentUser for code that only holds a context.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// WithTestUser injects u into the request context, bypassing the session
// middleware. Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(WithUser(r.Context(), u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the user into context when the request carries a
// valid bearer token or session cookie. A bearer token takes precedence.
// Unknown or inactive users are treated as anonymous.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		if tok, ok := bearerToken(r); ok && sm.verifier != nil {
			claims, err := sm.verifier.Verify(tok)
			if err != nil {
				sm.logger.Debug("bearer token rejected", zap.Error(err))
			} else if u := sm.fetcher.FetchByOpenID(r.Context(), claims.Subject); u != nil {
				r = WithTestUser(r, u)
			}
			next.ServeHTTP(w, r)
			return
		}

		sess := sm.session(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			if id, ok := sess.Values[userIDKey].(int64); ok {
				if u := sm.fetcher.FetchUser(r.Context(), id); u != nil {
					r = WithTestUser(r, u)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn answers 401 with a JSON error envelope when no user is in
// context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeDenied(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 when signed out and 403 when the user's role is not
// in allowed. Role comparison is case-insensitive.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToUpper(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				writeDenied(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if _, has := set[strings.ToUpper(u.Role)]; !has {
				writeDenied(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Login / logout                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Login marks the session as authenticated for userID.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess := sm.session(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// Logout expires the session cookie.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := sm.session(r)
	delete(sess.Values, isAuthKey)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// helpers

// session returns the request's session. A cookie that no longer decodes,
// typically after a key rotation, yields a fresh session.
func (sm *SessionManager) session(r *http.Request) *sessions.Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.logger.Debug("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.logger.Warn("session store error, using fresh session", zap.Error(err))
		}
	}
	if sess == nil {
		sess = sessions.NewSession(sm.store, sm.name)
		opts := *sm.store.Options
		sess.Options = &opts
	}
	return sess
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func writeDenied(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}
