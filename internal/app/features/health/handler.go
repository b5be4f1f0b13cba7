// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler answers the health probes.
type Handler struct {
	DB      Pinger
	Version string
	Log     *zap.Logger
}

// NewHandler builds the probes over db, usually the *mongo.Client.
func NewHandler(db Pinger, version string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Version: version,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Version  string `json:"version,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve reports readiness: 200 with database "connected" when MongoDB
// answers a primary ping within timeouts.Ping, 503 with "disconnected"
// otherwise.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Version:  h.Version,
			Message:  "Database unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected", Version: h.Version})
}

// Live reports that the process is serving. It never touches the database.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: h.Version})
}

func writeJSON(w http.ResponseWriter, status int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
