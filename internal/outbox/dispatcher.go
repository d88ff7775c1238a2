package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/finex_ledger/internal/apperrors"
	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/finex_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/finex_ledger/internal/platform/clock"
)

// RetryClassifier reports whether a handler error must not be retried.
type RetryClassifier interface {
	IsNonRetryable(err error) bool
}

type RetryClassifierFunc func(err error) bool

func (fn RetryClassifierFunc) IsNonRetryable(err error) bool {
	if fn == nil {
		return false
	}
	return fn(err)
}

// DefaultRetryClassifier gives up on events that can never succeed: unknown
// event types, malformed payloads and links to rows that do not exist.
var DefaultRetryClassifier = RetryClassifierFunc(func(err error) bool {
	return errors.Is(err, ErrHandlerNotRegistered) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound)
})

// Config tunes the dispatcher loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryBase    time.Duration
}

// DispatchResult counts the outcomes of one dispatch cycle.
type DispatchResult struct {
	Processed int
	Published int
	Failed    int
	Invalid   int
}

// Dispatcher claims pending events and hands them to registered handlers.
// Delivery is at least once, so handlers must be idempotent.
type Dispatcher struct {
	repo       portsrepo.OutboxRepositoryFacade
	handlers   *HandlerRegistry
	classifier RetryClassifier
	clock      clock.Clock
	cfg        Config
	logger     *slog.Logger
}

func NewDispatcher(repo portsrepo.OutboxRepositoryFacade, handlers *HandlerRegistry, clk clock.Clock, cfg Config, logger *slog.Logger) *Dispatcher {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	return &Dispatcher{
		repo:       repo,
		handlers:   handlers,
		classifier: DefaultRetryClassifier,
		clock:      clk,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "outbox_dispatcher")),
	}
}

// WithRetryClassifier replaces the default classifier.
func (d *Dispatcher) WithRetryClassifier(c RetryClassifier) *Dispatcher {
	if c != nil {
		d.classifier = c
	}
	return d
}

// Run dispatches until ctx is cancelled. It always returns nil.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Outbox dispatcher started", slog.Duration("poll_interval", d.cfg.PollInterval))
	defer d.logger.Info("Outbox dispatcher stopped")

	for {
		res := d.DispatchOnce(ctx)
		if res.Processed > 0 {
			d.logger.Debug("Outbox dispatch cycle finished",
				slog.Int("processed", res.Processed),
				slog.Int("published", res.Published),
				slog.Int("failed", res.Failed),
				slog.Int("invalid", res.Invalid))
		}
		// A full batch means more work is probably waiting.
		if res.Processed == d.cfg.BatchSize {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		if err := SleepWithContext(ctx, d.cfg.PollInterval); err != nil {
			return nil
		}
	}
}

// DispatchOnce claims one batch and processes every event in it.
func (d *Dispatcher) DispatchOnce(ctx context.Context) DispatchResult {
	var res DispatchResult

	events, err := d.repo.ClaimEvents(ctx, d.clock.Now(), d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error("Failed to claim outbox events", slog.String("error", err.Error()))
		}
		return res
	}

	for i := range events {
		if ctx.Err() != nil {
			break
		}
		event := &events[i]
		res.Processed++

		handleErr := d.handlers.Handle(ctx, event)
		switch {
		case handleErr == nil:
			res.Published++
			d.mark(event, d.repo.MarkPublished(ctx, event.ID, d.clock.Now()))
		case d.classifier.IsNonRetryable(handleErr):
			res.Invalid++
			d.logger.Warn("Outbox event rejected",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.String("error", handleErr.Error()))
			d.mark(event, d.repo.MarkInvalid(ctx, event.ID, handleErr.Error(), d.clock.Now()))
		default:
			res.Failed++
			now := d.clock.Now()
			retryAt := now.Add(ExponentialWithJitter(d.cfg.RetryBase, event.Attempts-1))
			level := slog.LevelWarn
			if event.Attempts >= d.cfg.MaxAttempts {
				level = slog.LevelError
			}
			d.logger.Log(ctx, level, "Outbox event failed",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Int("attempts", event.Attempts),
				slog.Time("retry_at", retryAt),
				slog.String("error", handleErr.Error()))
			d.mark(event, d.repo.MarkFailed(ctx, event.ID, handleErr.Error(), retryAt, now))
		}
	}
	return res
}

func (d *Dispatcher) mark(event *domain.OutboxEvent, err error) {
	if err != nil {
		d.logger.Error("Failed to persist outbox event state",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
