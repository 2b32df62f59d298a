package report

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// SendNow handles POST /report/send: drain and mail immediately.
func SendNow(rep *Reporter, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := rep.acc.Len()
		if err := rep.Send(); err != nil {
			logger.Error().Err(err).Msg("manual report send failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"message": "report sent", "codes": n})
	}
}

// StopTimer handles POST /report/stop: cancel a pending report timer.
func StopTimer(rep *Reporter, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep.Stop()
		writeJSON(w, map[string]any{"message": "report timer stopped"})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
