// internal/app/features/login/login.go
package login

import (
	"errors"
	"net/http"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

var errNoVerifier = errors.New("identity token verification is not configured")

type loginInput struct {
	Token string `json:"token" validate:"required"`
}

type loginResult struct {
	User models.User `json:"user"`
}

// HandleLogin handles POST /auth/login.
//
// The identity token's subject is the openId. First sign-in creates a
// BENEFICIARY without an organization; later sign-ins refresh name, email
// and avatar from the token. Deactivated accounts are refused.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	in, err := rpc.Decode[loginInput](w, r)
	if err != nil {
		rpc.WriteError(w, r, h.Log, err)
		return
	}

	verifier := h.SessionMgr.Verifier()
	if verifier == nil {
		h.Log.Error("login attempted without a token verifier")
		rpc.WriteError(w, r, h.Log, apperr.Unavailable(errNoVerifier))
		return
	}
	claims, err := verifier.Verify(in.Token)
	if err != nil {
		h.Log.Info("identity token rejected", zap.Error(err))
		h.Audit.LoginFailed(r.Context(), "invalid token")
		rpc.WriteError(w, r, h.Log, apperr.Unauthorized())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.login")
	defer cancel()

	u, err := h.Stores.Users.UpsertByOpenID(ctx, models.User{
		OpenID:    claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.Picture,
	})
	if err != nil {
		h.Log.Error("login: upsert user", zap.Error(err), zap.String("open_id", claims.Subject))
		rpc.WriteError(w, r, h.Log, apperr.From(err))
		return
	}
	if !u.Enabled() {
		h.Audit.LoginFailed(auth.WithUser(ctx, &auth.SessionUser{ID: u.ID}), "account deactivated")
		rpc.WriteError(w, r, h.Log, apperr.Forbidden("account deactivated"))
		return
	}

	if err := h.SessionMgr.Login(w, r, u.ID); err != nil {
		h.Log.Error("login: save session", zap.Error(err), zap.Int64("user_id", u.ID))
		rpc.WriteError(w, r, h.Log, apperr.Internal(err))
		return
	}
	h.Audit.LoginSuccess(ctx, u)
	rpc.WriteResult(w, loginResult{User: u})
}

// HandleLogout handles POST /auth/logout. The cookie is expired whether or
// not the caller was signed in.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	u, signedIn := auth.CurrentUser(r)
	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Warn("logout: session cookie not cleared", zap.Error(err))
	}
	if signedIn {
		h.Audit.Logout(r.Context(), u.ID, u.OrganizationID)
	}
	rpc.WriteResult(w, shared.Done)
}
