package compare

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/fileio"
)

// Handle returns the handler for POST /compare: multipart fileA + fileB,
// optional "key" form value, report as JSON.
func Handle(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		defer r.Body.Close()
		if err := r.ParseMultipartForm(200 << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		fileA, headerA, err := r.FormFile("fileA")
		if err != nil {
			http.Error(w, "missing fileA: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer fileA.Close()

		fileB, headerB, err := r.FormFile("fileB")
		if err != nil {
			http.Error(w, "missing fileB: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer fileB.Close()

		a, err := fileio.ReadAny(fileA, headerA.Filename, 1)
		if err != nil {
			logger.Error().Err(err).Str("file", headerA.Filename).Msg("read fileA")
			http.Error(w, "failed to read fileA: "+err.Error(), http.StatusBadRequest)
			return
		}
		b, err := fileio.ReadAny(fileB, headerB.Filename, 1)
		if err != nil {
			logger.Error().Err(err).Str("file", headerB.Filename).Msg("read fileB")
			http.Error(w, "failed to read fileB: "+err.Error(), http.StatusBadRequest)
			return
		}

		rep := Run(a, b, Options{Key: r.FormValue("key")})

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			logger.Error().Err(err).Msg("write json")
			return
		}

		logger.Info().
			Int("rowsA", rep.RowsA).
			Int("rowsB", rep.RowsB).
			Dur("elapsed", time.Since(start)).
			Msg("compare done")
	}
}
