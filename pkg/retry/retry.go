package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var (
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")
	ErrContextCanceled   = errors.New("context canceled during retry")
)

// Config controls attempts and backoff
type Config struct {
	// MaxAttempts counts the first call, so 1 means no retry
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor of 0.1 spreads each wait by +-10%
	JitterFactor float64
	// ShouldRetry decides whether an error is transient; nil retries everything
	ShouldRetry func(error) bool
}

func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the unit being retried
type Operation func(ctx context.Context) error

// PermanentError stops the loop regardless of ShouldRetry
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// ExhaustedError is returned after the last attempt failed with a retryable error
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrAttemptsExhausted, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrAttemptsExhausted, e.Last}
}

// RetryCallback runs before each wait
type RetryCallback func(attempt int, err error, nextInterval time.Duration)

type Retrier struct {
	config *Config
}

func New(config *Config) *Retrier {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	cfg.JitterFactor = math.Max(0, math.Min(1, cfg.JitterFactor))

	return &Retrier{config: &cfg}
}

func (r *Retrier) Do(ctx context.Context, op Operation) error {
	return r.DoWithCallback(ctx, op, nil)
}

// DoWithCallback runs op until it succeeds, returns a non-retryable error,
// the attempts run out, or ctx is done
func (r *Retrier) DoWithCallback(ctx context.Context, op Operation, callback RetryCallback) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return errors.Join(ErrContextCanceled, ctx.Err())
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		if r.config.ShouldRetry != nil && !r.config.ShouldRetry(err) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		interval := r.interval(attempt)
		if callback != nil {
			callback(attempt, err, interval)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ErrContextCanceled, ctx.Err())
		case <-timer.C:
		}
	}

	return &ExhaustedError{Attempts: r.config.MaxAttempts, Last: lastErr}
}

// interval is the wait after the given 1-based attempt
func (r *Retrier) interval(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt-1))

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (rand.Float64()*2 - 1) * jitter
	}
	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}
	if interval < 0 {
		interval = float64(r.config.InitialInterval)
	}
	return time.Duration(interval)
}

func Do(ctx context.Context, config *Config, op Operation) error {
	return New(config).Do(ctx, op)
}
