package importer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/duksosleepy/restate-server/internal/store"
)

// ReportArmer starts the periodic non-existing-codes report on first submit.
type ReportArmer interface {
	Arm()
}

// Backoff is the retry delay after n failed attempts: 5·2^min(n,6) seconds,
// capped at 5 minutes.
func Backoff(attempt int) time.Duration {
	n := attempt
	if n > 6 {
		n = 6
	}
	secs := 5 * (1 << n)
	if secs > 300 {
		secs = 300
	}
	return time.Duration(secs) * time.Second
}

// Dispatcher runs the order-submission worker pool. Failed submissions are
// persisted, their error text scanned for missing product codes, and the task
// re-queued with exponential backoff until it succeeds (or MaxAttempts, when
// configured, is exhausted).
type Dispatcher struct {
	client      *Client
	store       *store.Store
	acc         *Accumulator
	reporter    ReportArmer
	limiter     *rate.Limiter
	maxAttempts int
	logger      zerolog.Logger

	queue  chan *Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(client *Client, st *store.Store, acc *Accumulator, reporter ReportArmer,
	ratePerSec float64, maxAttempts int, logger zerolog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		client:      client,
		store:       st,
		acc:         acc,
		reporter:    reporter,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSec), 1),
		maxAttempts: maxAttempts,
		logger:      logger,
		queue:       make(chan *Task, 1024),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (d *Dispatcher) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.logger.Info().Int("workers", workers).Msg("dispatcher started")
}

// Stop cancels in-flight work and waits for the workers. Pending retries are
// lost in memory but survive in the store.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
}

// Enqueue schedules a task. Every submission arms the report timer; Arm is a
// no-op while a report is already pending, so after a report fires the next
// submission starts the next cycle.
func (d *Dispatcher) Enqueue(t *Task) {
	if d.reporter != nil {
		d.reporter.Arm()
	}
	select {
	case d.queue <- t:
	case <-d.ctx.Done():
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case t := <-d.queue:
			d.process(t)
		}
	}
}

func (d *Dispatcher) process(t *Task) {
	if err := d.limiter.Wait(d.ctx); err != nil {
		return
	}

	res := d.client.Submit(d.ctx, t.URL, t.Payload)
	log := d.logger.With().Str("order_id", t.ID).Int("attempt", t.Attempt).Logger()

	if res.Success {
		d.complete(t, log)
		return
	}

	duplicate, codes := ScanErrorCode(res.ErrorCode)
	if duplicate {
		// the CRM already holds this document; treat as done
		log.Info().Str("error_code", res.ErrorCode).Msg("duplicate document, dropping task")
		d.complete(t, log)
		return
	}

	if len(codes) > 0 {
		d.acc.Add(codes...)
		for _, c := range codes {
			if err := d.store.InsertNonExistingCode(c, t.ID); err != nil {
				log.Error().Err(err).Str("code", c).Msg("persist non-existing code")
			}
		}
	}

	errText := res.ErrorCode
	if errText == "" {
		errText = res.Err
	}
	if err := d.store.UpsertOrder(FailedOrder(t, errText)); err != nil {
		log.Error().Err(err).Msg("persist failed order")
	}
	if err := d.store.BumpDailyStats(false); err != nil {
		log.Error().Err(err).Msg("bump daily stats")
	}

	if !res.Retryable {
		log.Error().Str("error", res.Err).Msg("submission failed, not retryable")
		return
	}

	t.Attempt++
	if d.maxAttempts > 0 && t.Attempt >= d.maxAttempts {
		log.Error().Int("max_attempts", d.maxAttempts).Msg("giving up on order")
		return
	}

	delay := Backoff(t.Attempt)
	log.Warn().
		Int("status", res.StatusCode).
		Dur("retry_in", delay).
		Msg("submission failed, retry scheduled")
	time.AfterFunc(delay, func() {
		select {
		case d.queue <- t:
		case <-d.ctx.Done():
		}
	})
}

func (d *Dispatcher) complete(t *Task, log zerolog.Logger) {
	if err := d.store.DeleteOrder(t.ID, t.ProductCode()); err != nil {
		log.Error().Err(err).Msg("delete completed order")
	}
	if err := d.store.BumpDailyStats(true); err != nil {
		log.Error().Err(err).Msg("bump daily stats")
	}
	log.Info().Msg("order imported")
}
