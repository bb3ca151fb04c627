// Package poller drives update ingestion over getUpdates long polling.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alem-hub/botcore/telegram"
)

// Dispatcher consumes decoded updates. Implemented by dispatch.Registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, u *telegram.Update)
	HandlePollingError(ctx context.Context, err error)
}

// Config holds the polling driver settings.
type Config struct {
	// Offset is the initial getUpdates offset. Zero lets the server pick up
	// from the oldest pending update.
	Offset int64

	// LastN, when positive, makes the first request use offset -LastN so
	// only the most recent N pending updates are processed on startup.
	// Ignored when Offset is set.
	LastN int

	// Limit caps the batch size (1..100). Zero leaves it to the server.
	Limit int

	// Timeout is the server-side long poll timeout in seconds. Zero makes
	// getUpdates return immediately (short polling).
	Timeout int

	// AllowedUpdates narrows the update kinds the server delivers. Nil keeps
	// the server-side default.
	AllowedUpdates []string

	// PollInterval is the minimum spacing between getUpdates calls. The tick
	// starts before the request so the sleep overlaps with it.
	// Default: 25ms.
	PollInterval time.Duration

	// RequestTimeout bounds every outbound call including the long poll.
	// Default: max(Timeout, 0) seconds + 60s.
	RequestTimeout time.Duration

	// DropPending discards the pending update backlog during the
	// deleteWebhook startup step.
	DropPending bool

	// Commands, when non-empty, is published via setMyCommands during
	// startup.
	Commands []telegram.BotCommand

	// Concurrency is the number of updates dispatched in parallel. Zero or
	// one dispatches each batch sequentially in received order.
	Concurrency int

	// Logger receives driver-level records. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the production polling settings.
func DefaultConfig() Config {
	return Config{
		PollInterval: 25 * time.Millisecond,
	}
}

func (c *Config) normalize() {
	if c.PollInterval <= 0 {
		c.PollInterval = 25 * time.Millisecond
	}
	if c.RequestTimeout <= 0 {
		timeout := c.Timeout
		if timeout < 0 {
			timeout = 0
		}
		c.RequestTimeout = time.Duration(timeout)*time.Second + 60*time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats is a snapshot of the driver's counters.
type Stats struct {
	Batches      int64
	Updates      int64
	CycleErrors  int64
	LastUpdateID int64
}

// Poller runs the long polling loop for one bot.
type Poller struct {
	bot        *telegram.Bot
	dispatcher Dispatcher
	cfg        Config

	mu     sync.Mutex
	stats  Stats
	offset int64
}

// New creates a polling driver feeding dispatcher.
func New(bot *telegram.Bot, dispatcher Dispatcher, cfg Config) *Poller {
	cfg.normalize()
	p := &Poller{
		bot:        bot,
		dispatcher: dispatcher,
		cfg:        cfg,
		offset:     cfg.Offset,
	}
	if cfg.Offset == 0 && cfg.LastN > 0 {
		p.offset = -int64(cfg.LastN)
	}
	return p
}

// Stats returns a snapshot of the driver counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Run executes the startup sequence and then polls until ctx is canceled.
// Startup failures are fatal and returned; polling cycle failures are
// reported to the dispatcher's polling error sink and the loop continues.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.setup(ctx); err != nil {
		return err
	}

	p.cfg.Logger.Info("polling started",
		"timeout", p.cfg.Timeout,
		"limit", p.cfg.Limit,
		"poll_interval", p.cfg.PollInterval,
	)

	for {
		// The tick starts before the request so the interval overlaps the
		// long poll instead of adding to it.
		tick := time.NewTimer(p.cfg.PollInterval)

		updates, err := p.fetch(ctx)
		switch {
		case ctx.Err() != nil:
			tick.Stop()
			return ctx.Err()
		case err != nil:
			p.recordError()
			p.dispatcher.HandlePollingError(ctx, err)
			if after, ok := telegram.RetryAfter(err); ok {
				tick.Stop()
				tick = time.NewTimer(time.Duration(after) * time.Second)
			}
		default:
			p.consume(ctx, updates)
		}

		select {
		case <-ctx.Done():
			tick.Stop()
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// setup removes any registered webhook and publishes the command menu.
func (p *Poller) setup(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	err := p.bot.DeleteWebhook(callCtx, p.cfg.DropPending)
	cancel()
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	if len(p.cfg.Commands) > 0 {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
		err := p.bot.SetMyCommands(callCtx, p.cfg.Commands)
		cancel()
		if err != nil {
			return fmt.Errorf("set commands: %w", err)
		}
	}
	return nil
}

// fetch performs one getUpdates call. The offset is left untouched on error
// so the failed batch is redelivered.
func (p *Poller) fetch(ctx context.Context) ([]telegram.Update, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	p.mu.Lock()
	offset := p.offset
	p.mu.Unlock()

	return p.bot.GetUpdates(callCtx, telegram.GetUpdatesParams{
		Offset:         offset,
		Limit:          p.cfg.Limit,
		Timeout:        p.cfg.Timeout,
		AllowedUpdates: p.cfg.AllowedUpdates,
	})
}

// consume advances the offset past the batch and dispatches every update in
// received order.
func (p *Poller) consume(ctx context.Context, updates []telegram.Update) {
	if len(updates) == 0 {
		return
	}

	maxID := updates[0].ID
	for _, u := range updates[1:] {
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	p.mu.Lock()
	p.offset = maxID + 1
	p.stats.Batches++
	p.stats.Updates += int64(len(updates))
	p.stats.LastUpdateID = maxID
	p.mu.Unlock()

	if p.cfg.Concurrency > 1 {
		p.consumeConcurrent(ctx, updates)
		return
	}
	for i := range updates {
		p.dispatcher.Dispatch(ctx, &updates[i])
	}
}

// consumeConcurrent dispatches the batch through a bounded pool. Updates
// still start in received order; completion order is unspecified.
func (p *Poller) consumeConcurrent(ctx context.Context, updates []telegram.Update) {
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := range updates {
		sem <- struct{}{}
		wg.Add(1)
		go func(u *telegram.Update) {
			defer wg.Done()
			defer func() { <-sem }()
			p.dispatcher.Dispatch(ctx, u)
		}(&updates[i])
	}
	wg.Wait()
}

func (p *Poller) recordError() {
	p.mu.Lock()
	p.stats.CycleErrors++
	p.mu.Unlock()
}
