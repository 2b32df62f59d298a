package importer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/config"
	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/store"
)

type submitEntry struct {
	URL  string  `json:"url"`
	Data Payload `json:"data"`
}

// SubmitJSON handles POST /orders/import: a JSON array of {url?, data} entries.
// Every order needs a maDonHang; the whole batch is rejected when one lacks it.
func SubmitJSON(cfg config.Config, d *Dispatcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var entries []submitEntry
		if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
			http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		tasks := make([]*Task, 0, len(entries))
		for _, e := range entries {
			id, err := TaskID(e.Data)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			url := e.URL
			if url == "" {
				url = cfg.CRMImportURL
			}
			if e.Data.APIKey == "" {
				e.Data.APIKey = cfg.CRMAPIKey
			}
			tasks = append(tasks, &Task{ID: id, URL: url, Payload: e.Data})
		}

		taskIDs := make([]string, 0, len(tasks))
		for _, t := range tasks {
			d.Enqueue(t)
			taskIDs = append(taskIDs, t.ID)
		}

		logger.Info().Int("count", len(taskIDs)).Msg("orders submitted")
		writeJSON(w, map[string]any{
			"message":  fmt.Sprintf("Submitted %d tasks", len(taskIDs)),
			"task_ids": taskIDs,
		})
	}
}

// SubmitFile handles POST /orders/import-file: a multipart orders spreadsheet
// with canonical Vietnamese headers, one order per row.
func SubmitFile(cfg config.Config, d *Dispatcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		t, err := fileio.ReadAny(file, header.Filename, 1)
		if err != nil {
			logger.Error().Err(err).Str("file", header.Filename).Msg("read orders file")
			http.Error(w, "failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}

		payloads, skipped := PayloadsFromTable(t, cfg.CRMAPIKey)
		taskIDs := make([]string, 0, len(payloads))
		for _, p := range payloads {
			id, err := TaskID(p)
			if err != nil {
				continue
			}
			d.Enqueue(&Task{ID: id, URL: cfg.CRMImportURL, Payload: p})
			taskIDs = append(taskIDs, id)
		}

		logger.Info().
			Int("submitted", len(taskIDs)).
			Int("skipped", skipped).
			Str("file", header.Filename).
			Msg("orders file submitted")
		writeJSON(w, map[string]any{
			"message":  fmt.Sprintf("Submitted %d tasks", len(taskIDs)),
			"task_ids": taskIDs,
			"skipped":  skipped,
		})
	}
}

// Pending handles GET /orders/pending: stored orders still awaiting retry.
func Pending(st *store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := st.PendingOrders()
		if err != nil {
			logger.Error().Err(err).Msg("query pending orders")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if orders == nil {
			orders = []store.FailedOrder{}
		}
		writeJSON(w, map[string]any{"count": len(orders), "orders": orders})
	}
}

// DailyStats handles GET /orders/stats: recent daily completed/failed counters.
func DailyStats(st *store.Store, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := st.RecentDailyStats(30)
		if err != nil {
			logger.Error().Err(err).Msg("query daily stats")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if stats == nil {
			stats = []store.DailyStats{}
		}
		writeJSON(w, map[string]any{"stats": stats})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

