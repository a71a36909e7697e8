// Package resilience provides resilient execution patterns using fortify.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/ssumakant/abp-agent/domain/calendar"
)

// CalendarStore wraps a calendar.Store with bulkhead, circuit breaker,
// and retry patterns. Reads are retried; writes are not, because a
// timed-out booking may still have landed on the provider side.
type CalendarStore struct {
	inner calendar.Store

	readBulkhead  bulkhead.Bulkhead[[]calendar.Event]
	readBreaker   circuitbreaker.CircuitBreaker[[]calendar.Event]
	readRetry     retry.Retry[[]calendar.Event]
	writeBulkhead bulkhead.Bulkhead[calendar.Event]
	writeBreaker  circuitbreaker.CircuitBreaker[calendar.Event]
	timeout       time.Duration
}

// Config configures the resilient calendar store.
type Config struct {
	// MaxConcurrent limits concurrent provider calls.
	MaxConcurrent int

	// BreakerThreshold is the number of consecutive failures before opening.
	BreakerThreshold int

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration

	// RetryMaxAttempts is the maximum number of read attempts.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// CallTimeout bounds each provider call.
	CallTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:          10,
		BreakerThreshold:       5,
		BreakerTimeout:         30 * time.Second,
		RetryMaxAttempts:       3,
		RetryInitialDelay:      100 * time.Millisecond,
		RetryBackoffMultiplier: 2.0,
		CallTimeout:            30 * time.Second,
	}
}

// NewCalendarStore wraps the given store with resilience patterns.
func NewCalendarStore(inner calendar.Store, config Config) *CalendarStore {
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	threshold := config.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	breakerConfig := func() circuitbreaker.Config {
		return circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- bounds checked above
			Interval:    config.BreakerTimeout,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}
	}

	return &CalendarStore{
		inner: inner,
		readBulkhead: bulkhead.New[[]calendar.Event](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		readBreaker: circuitbreaker.New[[]calendar.Event](breakerConfig()),
		readRetry: retry.New[[]calendar.Event](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		writeBulkhead: bulkhead.New[calendar.Event](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		writeBreaker: circuitbreaker.New[calendar.Event](breakerConfig()),
		timeout:      config.CallTimeout,
	}
}

// NewDefaultCalendarStore wraps the given store with default configuration.
func NewDefaultCalendarStore(inner calendar.Store) *CalendarStore {
	return NewCalendarStore(inner, DefaultConfig())
}

// ListEvents lists events with retry, circuit breaker, and bulkhead applied.
// Composition order: Bulkhead -> Timeout -> Circuit Breaker -> Retry.
func (s *CalendarStore) ListEvents(ctx context.Context, calendarIDs []string, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	return s.readBulkhead.Execute(ctx, func(ctx context.Context) ([]calendar.Event, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		return s.readBreaker.Execute(ctx, func(ctx context.Context) ([]calendar.Event, error) {
			return s.readRetry.Do(ctx, func(ctx context.Context) ([]calendar.Event, error) {
				return s.inner.ListEvents(ctx, calendarIDs, timeMin, timeMax)
			})
		})
	})
}

// CreateEvent creates an event with circuit breaker and bulkhead applied.
func (s *CalendarStore) CreateEvent(ctx context.Context, calendarID string, event calendar.Event) (calendar.Event, error) {
	return s.writeBulkhead.Execute(ctx, func(ctx context.Context) (calendar.Event, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		return s.writeBreaker.Execute(ctx, func(ctx context.Context) (calendar.Event, error) {
			return s.inner.CreateEvent(ctx, calendarID, event)
		})
	})
}

// MoveEvent moves an event with circuit breaker and bulkhead applied.
func (s *CalendarStore) MoveEvent(ctx context.Context, calendarID, eventID string, start, end time.Time) (calendar.Event, error) {
	return s.writeBulkhead.Execute(ctx, func(ctx context.Context) (calendar.Event, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		return s.writeBreaker.Execute(ctx, func(ctx context.Context) (calendar.Event, error) {
			return s.inner.MoveEvent(ctx, calendarID, eventID, start, end)
		})
	})
}

// ReadBreakerState returns the current state of the read circuit breaker.
func (s *CalendarStore) ReadBreakerState() circuitbreaker.State {
	return s.readBreaker.State()
}

var _ calendar.Store = (*CalendarStore)(nil)
