// internal/app/system/rpc/rpc.go

// Package rpc adapts typed procedure functions to POST JSON endpoints.
//
// A procedure receives its decoded, validated input and returns a result or
// an error. Success is written as {"result": ...}; failures as
// {"error": {"code", "message", "fields"}, "requestId": "..."} with the HTTP
// status of the error kind.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/limits"
	"github.com/dalemusser/bilanhub/internal/app/system/requestid"
	"go.uber.org/zap"
)

// Empty is the input of procedures that take no arguments.
type Empty struct{}

// Procedure is an authenticated procedure.
type Procedure[In, Out any] func(ctx context.Context, actor authz.Actor, in In) (Out, error)

// PublicProcedure is a procedure open to anonymous callers.
type PublicProcedure[In, Out any] func(ctx context.Context, in In) (Out, error)

// Handle serves fn to signed-in callers. Anonymous callers get Unauthorized.
func Handle[In, Out any](log *zap.Logger, fn Procedure[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authz.UserCtx(r)
		if !ok {
			WriteError(w, r, log, apperr.Unauthorized())
			return
		}
		in, err := Decode[In](w, r)
		if err != nil {
			WriteError(w, r, log, err)
			return
		}
		out, err := fn(r.Context(), actor, in)
		if err != nil {
			WriteError(w, r, log, err)
			return
		}
		WriteResult(w, out)
	}
}

// HandlePublic serves fn to any caller.
func HandlePublic[In, Out any](log *zap.Logger, fn PublicProcedure[In, Out]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := Decode[In](w, r)
		if err != nil {
			WriteError(w, r, log, err)
			return
		}
		out, err := fn(r.Context(), in)
		if err != nil {
			WriteError(w, r, log, err)
			return
		}
		WriteResult(w, out)
	}
}

// Decode reads the JSON body into In and validates it. An empty body decodes
// to the zero value, which is then validated like any other input.
func Decode[In any](w http.ResponseWriter, r *http.Request) (In, error) {
	var in In
	body := http.MaxBytesReader(w, r.Body, limits.MaxRequestBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return in, apperr.Validation("request body too large")
		}
		return in, apperr.Validation("malformed JSON body: %v", err)
	}
	if err := Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorEnvelope struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// WriteResult writes {"result": v} with status 200.
func WriteResult(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"result": v})
}

// WriteError classifies err and writes the error envelope. Server-side kinds
// are logged with their cause; the cause is never sent to the caller.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	ae := apperr.From(err)
	rid := requestid.ID(r.Context())

	switch ae.Kind {
	case apperr.KindInternal, apperr.KindUnavailable, apperr.KindExternalFailure:
		log.Error("procedure failed",
			zap.String("path", r.URL.Path),
			zap.String("code", ae.Kind.Code()),
			zap.String("request_id", rid),
			zap.Error(err))
	default:
		log.Debug("procedure rejected",
			zap.String("path", r.URL.Path),
			zap.String("code", ae.Kind.Code()),
			zap.String("message", ae.Message))
	}

	writeJSON(w, ae.Kind.HTTPStatus(), errorEnvelope{
		Error: errorBody{
			Code:    ae.Kind.Code(),
			Message: ae.Message,
			Fields:  ae.Fields,
		},
		RequestID: rid,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
