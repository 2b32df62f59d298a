package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/compare"
	"github.com/duksosleepy/restate-server/internal/config"
	"github.com/duksosleepy/restate-server/internal/importer"
	mapHnd "github.com/duksosleepy/restate-server/internal/mapping/handler"
	"github.com/duksosleepy/restate-server/internal/middleware"
	"github.com/duksosleepy/restate-server/internal/report"
	"github.com/duksosleepy/restate-server/internal/store"
	"github.com/duksosleepy/restate-server/server/http/handlers"
)

// Deps are the long-lived components the handlers need.
type Deps struct {
	Dispatcher *importer.Dispatcher
	Store      *store.Store
	Reporter   *report.Reporter
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.Post("/mapping/apply", mapHnd.Apply(cfg, logger))
	r.Post("/compare", compare.Handle(logger))

	r.Post("/orders/import", importer.SubmitJSON(cfg, deps.Dispatcher, logger))
	r.Post("/orders/import-file", importer.SubmitFile(cfg, deps.Dispatcher, logger))
	r.Get("/orders/pending", importer.Pending(deps.Store, logger))
	r.Get("/orders/stats", importer.DailyStats(deps.Store, logger))

	r.Post("/report/send", report.SendNow(deps.Reporter, logger))
	r.Post("/report/stop", report.StopTimer(deps.Reporter, logger))

	return r
}
