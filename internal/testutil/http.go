package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// WithUser adds u to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID,
	})
}

// NewJSONRequest creates a POST request whose body is body encoded as JSON.
func NewJSONRequest(t *testing.T, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Call serves a JSON POST to target as u (anonymous when u is nil).
func Call(t *testing.T, h http.Handler, target string, u *models.User, body any) *ResponseRecorder {
	t.Helper()
	req := NewJSONRequest(t, target, body)
	if u != nil {
		req = WithUser(req, *u)
	}
	rec := NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// DecodeResult decodes the "result" member of a success envelope into v.
func (r *ResponseRecorder) DecodeResult(t testing.TB, v any) {
	t.Helper()
	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, r.Body.String())
	}
	if err := json.Unmarshal(env.Result, v); err != nil {
		t.Fatalf("decode result: %v (body %s)", err, r.Body.String())
	}
}

// ErrorCode returns the error code of an error envelope, or "".
func (r *ResponseRecorder) ErrorCode() string {
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	_ = json.Unmarshal(r.Body.Bytes(), &env)
	return env.Error.Code
}

// AssertError checks the status and error code of an error envelope.
func (r *ResponseRecorder) AssertError(t testing.TB, status int, code string) {
	t.Helper()
	r.AssertStatus(t, status)
	if got := r.ErrorCode(); got != code {
		t.Errorf("error code: got %q, want %q", got, code)
	}
}
