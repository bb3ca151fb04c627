package telegram

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alem-hub/botcore/pkg/circuitbreaker"
	"github.com/alem-hub/botcore/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESILIENT TRANSPORT
// Wraps a Caller with retries and a circuit breaker. Transient failures
// (network errors, server outages, 429 and 5xx rejections) are retried;
// everything else passes through untouched.
// ══════════════════════════════════════════════════════════════════════════════

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServerUnavailable) {
		return true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	if re, ok := AsRequestError(err); ok {
		return re.Code == 429 || re.Code >= 500
	}
	return false
}

// ResilientConfig holds the settings for the resilient wrapper.
type ResilientConfig struct {
	// Retrier drives the retry schedule. Defaults to retry.TelegramRetrier().
	Retrier *retry.Retrier

	// Breaker short-circuits calls while the API is failing. Leave nil to
	// use the stock Telegram breaker.
	Breaker *circuitbreaker.CircuitBreaker

	// Logger receives state change and retry records. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// ResilientCaller retries transient failures and trips a circuit breaker on
// sustained ones.
type ResilientCaller struct {
	inner   Caller
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewResilientCaller wraps inner with retry and circuit breaker behavior.
func NewResilientCaller(inner Caller, cfg ResilientConfig) *ResilientCaller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retrier == nil {
		cfg.Retrier = retry.TelegramRetrier()
	}
	if cfg.Breaker == nil {
		logger := cfg.Logger
		cfg.Breaker = circuitbreaker.TelegramAPIBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		})
	}
	return &ResilientCaller{
		inner:   inner,
		retrier: cfg.Retrier,
		breaker: cfg.Breaker,
		logger:  cfg.Logger,
	}
}

// Call performs the method through the breaker, retrying transient failures.
func (r *ResilientCaller) Call(ctx context.Context, token, method string, payload *Payload, dest any) error {
	return r.retrier.Do(ctx, func(ctx context.Context) error {
		err := r.breaker.Execute(ctx, func(ctx context.Context) error {
			return r.inner.Call(ctx, token, method, payload, dest)
		})
		if err == nil {
			return nil
		}
		if IsTransient(err) || errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return retry.Retryable(err)
		}
		return retry.Permanent(err)
	})
}
