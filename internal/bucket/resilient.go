package bucket

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/contestkit/arena/internal/domain"
)

// Storage is the bucket surface the resilient wrapper decorates.
type Storage interface {
	List(ctx context.Context, prefix string) ([]domain.FileInfo, error)
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// ResilientConfig holds configuration for the resilient bucket wrapper.
type ResilientConfig struct {
	// EnableCircuitBreaker enables circuit breaker pattern
	EnableCircuitBreaker bool

	// EnableRetry enables retry with backoff. Off by default: a failed
	// fetch surfaces to the user, who triggers the retry.
	EnableRetry bool

	// MaxConcurrent for bulkhead (default: 8)
	MaxConcurrent int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for bucket access.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		EnableCircuitBreaker: true,
		EnableRetry:          false,
		MaxConcurrent:        8,
	}
}

// Resilient wraps bucket access with resilience patterns from fortify.
type Resilient struct {
	storage Storage
	logger  *slog.Logger

	listBreaker  circuitbreaker.CircuitBreaker[[]domain.FileInfo]
	fetchBreaker circuitbreaker.CircuitBreaker[[]byte]
	listRetry    retry.Retry[[]domain.FileInfo]
	fetchRetry   retry.Retry[[]byte]
	fetchGuard   bulkhead.Bulkhead[[]byte]
}

// NewResilient wraps a storage backend with resilience patterns.
func NewResilient(storage Storage, cfg ResilientConfig) *Resilient {
	r := &Resilient{storage: storage, logger: cfg.Logger}

	if cfg.EnableCircuitBreaker {
		r.listBreaker = newBreaker[[]domain.FileInfo]("list", r.logger)
		r.fetchBreaker = newBreaker[[]byte]("fetch", r.logger)
	}

	if cfg.EnableRetry {
		r.listRetry = newRetry[[]domain.FileInfo]()
		r.fetchRetry = newRetry[[]byte]()
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	r.fetchGuard = bulkhead.New[[]byte](bulkhead.Config{
		MaxConcurrent: maxConcurrent,
		MaxQueue:      maxConcurrent * 2,
		QueueTimeout:  30 * time.Second,
	})

	return r
}

func newBreaker[T any](name string, logger *slog.Logger) circuitbreaker.CircuitBreaker[T] {
	return circuitbreaker.New[T](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			if logger != nil {
				logger.Warn("bucket circuit breaker state change",
					"op", name,
					"from", from.String(),
					"to", to.String())
			}
		},
	})
}

func newRetry[T any]() retry.Retry[T] {
	return retry.New[T](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
	})
}

// List lists objects through the circuit breaker.
func (r *Resilient) List(ctx context.Context, prefix string) ([]domain.FileInfo, error) {
	operation := func(ctx context.Context) ([]domain.FileInfo, error) {
		return r.storage.List(ctx, prefix)
	}

	if r.listRetry != nil {
		inner := operation
		operation = func(ctx context.Context) ([]domain.FileInfo, error) {
			return r.listRetry.Do(ctx, inner)
		}
	}

	if r.listBreaker != nil {
		return r.listBreaker.Execute(ctx, operation)
	}
	return operation(ctx)
}

// Fetch reads object content through the bulkhead and circuit breaker.
func (r *Resilient) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	operation := func(ctx context.Context) ([]byte, error) {
		return r.fetchGuard.Execute(ctx, func(ctx context.Context) ([]byte, error) {
			return r.storage.Fetch(ctx, fileID)
		})
	}

	if r.fetchRetry != nil {
		inner := operation
		operation = func(ctx context.Context) ([]byte, error) {
			return r.fetchRetry.Do(ctx, inner)
		}
	}

	if r.fetchBreaker != nil {
		return r.fetchBreaker.Execute(ctx, operation)
	}
	return operation(ctx)
}
