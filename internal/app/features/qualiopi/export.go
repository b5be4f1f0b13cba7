// internal/app/features/qualiopi/export.go
package qualiopi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/csvutil"
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

var statusLabels = map[models.IndicatorStatus]string{
	models.IndicatorTodo:       "À faire",
	models.IndicatorInProgress: "En cours",
	models.IndicatorDone:       "Terminé",
}

// serveIndicatorsCSV downloads the indicator table. The organization is
// the ?organizationId= query parameter or the caller's own.
func (h *Handler) serveIndicatorsCSV(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.UserCtx(r)
	if !ok {
		rpc.WriteError(w, r, h.Log, apperr.Unauthorized())
		return
	}
	var id *int64
	if q := r.URL.Query().Get("organizationId"); q != "" {
		n, err := strconv.ParseInt(q, 10, 64)
		if err != nil || n < 1 {
			rpc.WriteError(w, r, h.Log, apperr.ValidationFields(map[string]string{"organizationId": "must be a positive integer"}))
			return
		}
		id = &n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "qualiopi.indicators.csv")
	defer cancel()

	o, err := h.organization(ctx, a, id, orgpolicy.CanRead)
	if err != nil {
		rpc.WriteError(w, r, h.Log, err)
		return
	}
	ind := Build(o, h.settings(o))

	rows := make([][]string, 0, len(ind.Indicators))
	for _, i := range ind.Indicators {
		applicable := "Oui"
		if !i.Applicable {
			applicable = "Non"
		}
		rows = append(rows, []string{
			strconv.Itoa(i.Number),
			Criteria[i.Criterion],
			i.Title,
			applicable,
			statusLabels[i.Status],
		})
	}

	csvutil.Attachment(w, fmt.Sprintf("qualiopi-indicateurs-%s.csv", time.Now().Format("2006-01-02")))
	if err := csvutil.Write(w, []string{"Indicateur", "Critère", "Intitulé", "Applicable", "Statut"}, rows); err != nil {
		h.Log.Warn("qualiopi csv write failed", zap.Error(err), zap.Int64("organization_id", o.ID))
	}
}
