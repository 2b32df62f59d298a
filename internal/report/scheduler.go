package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/duksosleepy/restate-server/internal/importer"
)

// Reporter owns the periodic non-existing-codes report: a one-shot timer armed
// by the first order submission, drained and re-armable. When mailing fails the
// workbook lands in fallbackDir so the drained codes aren't lost.
type Reporter struct {
	acc         *importer.Accumulator
	mailer      *Mailer
	delay       time.Duration
	fallbackDir string
	logger      zerolog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func NewReporter(acc *importer.Accumulator, mailer *Mailer, delay time.Duration,
	fallbackDir string, logger zerolog.Logger) *Reporter {
	return &Reporter{
		acc:         acc,
		mailer:      mailer,
		delay:       delay,
		fallbackDir: fallbackDir,
		logger:      logger,
	}
}

// Arm starts the one-shot report timer if it is not already running.
func (r *Reporter) Arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		return
	}
	r.logger.Info().Dur("delay", r.delay).Msg("report timer armed")
	r.timer = time.AfterFunc(r.delay, func() {
		r.mu.Lock()
		r.timer = nil
		r.mu.Unlock()
		if err := r.Send(); err != nil {
			r.logger.Error().Err(err).Msg("scheduled report failed")
		}
	})
}

// Stop cancels a pending report timer.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
		r.logger.Info().Msg("report timer stopped")
	}
}

// Send drains the accumulator and mails the workbook. An empty accumulator is
// a no-op. The drain happens before the send, so codes arriving during the
// send go to the next report.
func (r *Reporter) Send() error {
	codes := r.acc.Drain()
	if len(codes) == 0 {
		r.logger.Info().Msg("no codes to report")
		return nil
	}

	now := time.Now()
	workbook, err := BuildWorkbook(codes, now)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}

	if err := r.mailer.Send(codes, workbook, now); err != nil {
		r.logger.Error().Err(err).Int("codes", len(codes)).Msg("mail report failed, writing workbook to disk")
		if werr := r.writeFallback(workbook, now); werr != nil {
			return fmt.Errorf("mail failed (%v) and fallback write failed: %w", err, werr)
		}
		return err
	}
	return nil
}

func (r *Reporter) writeFallback(workbook []byte, now time.Time) error {
	if err := os.MkdirAll(r.fallbackDir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(r.fallbackDir,
		fmt.Sprintf("non_existing_codes_%s.xlsx", now.Format("20060102_150405")))
	if err := os.WriteFile(name, workbook, 0o644); err != nil {
		return err
	}
	r.logger.Info().Str("file", name).Msg("report workbook written to disk")
	return nil
}
