package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stablecoin-gateway/internal/core/domain"
	"stablecoin-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// Deliverer performs one delivery attempt.
type Deliverer interface {
	Deliver(ctx context.Context, d *domain.WebhookDelivery) DeliveryOutcome
}

// DispatcherConfig tunes the polling loop.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	StaleAfter   time.Duration // DELIVERING rows older than this are requeued
	MaxAttempts  int
}

// WebhookDispatcher polls due deliveries from the outbox table and hands
// them to a pool of workers. A sweeper returns deliveries abandoned in
// DELIVERING (a crashed worker) to the retry queue.
type WebhookDispatcher struct {
	deliveries ports.WebhookDeliveryRepository
	executor   Deliverer
	cfg        DispatcherConfig
	log        zerolog.Logger
	now        func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWebhookDispatcher creates a dispatcher. Start must be called to run it.
func NewWebhookDispatcher(
	deliveries ports.WebhookDeliveryRepository,
	executor Deliverer,
	cfg DispatcherConfig,
	log zerolog.Logger,
) *WebhookDispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 2 * time.Minute
	}
	return &WebhookDispatcher{
		deliveries: deliveries,
		executor:   executor,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Start launches the poller and the stale sweeper. Calling Start on a
// running dispatcher is a no-op.
func (d *WebhookDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.running = true

	d.log.Info().
		Int("workers", d.cfg.Workers).
		Dur("poll_interval", d.cfg.PollInterval).
		Msg("webhook dispatcher started")

	d.wg.Add(2)
	go d.pollLoop(ctx)
	go d.sweepLoop(ctx)
}

// Stop signals the loops to exit and waits for in-flight attempts to finish.
func (d *WebhookDispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}
	d.cancel()
	d.wg.Wait()
	d.running = false
	d.log.Info().Msg("webhook dispatcher stopped")
}

func (d *WebhookDispatcher) pollLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			d.log.Error().Err(err).Msg("webhook dispatch cycle failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *WebhookDispatcher) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.StaleAfter / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.SweepStale(ctx); err != nil && ctx.Err() == nil {
				d.log.Error().Err(err).Msg("stale delivery sweep failed")
			}
		}
	}
}

// DispatchOnce runs one polling cycle: it lists up to BatchSize due
// deliveries and attempts them on at most Workers goroutines, returning once
// all of them finished. Attempts already started are not cancelled by ctx.
func (d *WebhookDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	due, err := d.deliveries.ListDue(ctx, d.now(), d.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list due deliveries: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	jobs := make(chan *domain.WebhookDelivery)
	attemptCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < min(d.cfg.Workers, len(due)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for delivery := range jobs {
				d.executor.Deliver(attemptCtx, delivery)
			}
		}()
	}

	dispatched := 0
feed:
	for _, delivery := range due {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- delivery:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	if dispatched > 0 {
		d.log.Debug().Int("count", dispatched).Msg("webhook deliveries dispatched")
	}
	return dispatched, nil
}

// SweepStale requeues deliveries stuck in DELIVERING for longer than StaleAfter.
func (d *WebhookDispatcher) SweepStale(ctx context.Context) (int64, error) {
	n, err := d.deliveries.RequeueStale(ctx, d.now().Add(-d.cfg.StaleAfter), d.cfg.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("requeue stale deliveries: %w", err)
	}
	if n > 0 {
		d.log.Warn().Int64("count", n).Msg("requeued stale webhook deliveries")
	}
	return n, nil
}
