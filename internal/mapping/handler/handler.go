package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/config"
	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/mapping/model"
	mapSvc "github.com/duksosleepy/restate-server/internal/mapping/service"
)

// Apply returns the handler for POST /mapping/apply: multipart mapping_file +
// data_file in, transformed workbook out (stats in the X-Mapping-Stats header),
// or the stats alone with ?output=json.
func Apply(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger
		if rid := r.Header.Get("X-Request-ID"); rid != "" {
			log = logger.With().Str("req_id", rid).Logger()
		}

		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		mapFile, mapHeader, err := r.FormFile("mapping_file")
		if err != nil {
			http.Error(w, "missing mapping_file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer mapFile.Close()

		dataFile, dataHeader, err := r.FormFile("data_file")
		if err != nil {
			http.Error(w, "missing data_file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer dataFile.Close()

		mapping, err := fileio.ReadAny(mapFile, mapHeader.Filename, 1)
		if err != nil {
			log.Error().Err(err).Str("file", mapHeader.Filename).Msg("read mapping file")
			http.Error(w, "failed to read mapping file: "+err.Error(), http.StatusBadRequest)
			return
		}
		data, err := fileio.ReadAny(dataFile, dataHeader.Filename, 1)
		if err != nil {
			log.Error().Err(err).Str("file", dataHeader.Filename).Msg("read data file")
			http.Error(w, "failed to read data file: "+err.Error(), http.StatusBadRequest)
			return
		}

		stats, err := mapSvc.Process(mapping, data, cfg.FuzzyEngine, log)
		if err != nil {
			var mc *model.MissingColumnsError
			var mp *model.MissingProductCodeError
			if errors.As(err, &mc) || errors.As(err, &mp) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			log.Error().Err(err).Msg("mapping failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		statsJSON, _ := json.Marshal(stats)

		if r.URL.Query().Get("output") == "json" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write(statsJSON)
			logDone(log, stats, start)
			return
		}

		out, err := fileio.WriteXLSX(data)
		if err != nil {
			log.Error().Err(err).Msg("write output workbook")
			http.Error(w, "failed to write output: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="mapped_result.xlsx"`)
		w.Header().Set("X-Mapping-Stats", string(statsJSON))
		_, _ = w.Write(out)

		logDone(log, stats, start)
	}
}

func logDone(log zerolog.Logger, stats *model.Stats, start time.Time) {
	log.Info().
		Int("matched", stats.MatchedCount).
		Int("total", stats.TotalCount).
		Dur("elapsed", time.Since(start)).
		Msg("mapping apply done")
}
