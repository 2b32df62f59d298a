package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/duksosleepy/restate-server/internal/config"
	"github.com/duksosleepy/restate-server/internal/importer"
	"github.com/duksosleepy/restate-server/internal/report"
	"github.com/duksosleepy/restate-server/internal/store"
	serverhttp "github.com/duksosleepy/restate-server/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open store")
	}
	defer st.Close()

	acc := importer.NewAccumulator()
	mailer := report.NewMailer(cfg, logger)
	reporter := report.NewReporter(acc, mailer, cfg.ReportDelay, filepath.Dir(cfg.LogFile), logger)

	client := importer.NewClient(cfg.HTTPTimeout, logger)
	dispatcher := importer.NewDispatcher(client, st, acc, reporter,
		cfg.CRMRateLimit, cfg.MaxAttempts, logger)
	dispatcher.Start(cfg.Workers)

	r := serverhttp.NewRouter(cfg, logger, serverhttp.Deps{
		Dispatcher: dispatcher,
		Store:      st,
		Reporter:   reporter,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	reporter.Stop()
	dispatcher.Stop()
	logger.Info().Msg("bye")
}
