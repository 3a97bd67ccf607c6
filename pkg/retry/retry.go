// Package retry runs operations under bounded exponential backoff with
// jitter. Errors are retried unless wrapped with Permanent; the compensating
// release in the registration workflow is its primary caller.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrMaxRetriesExceeded is returned when every attempt failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	// ErrContextCanceled is returned when the context ended mid-retry
	ErrContextCanceled = errors.New("context canceled during retry")
)

// Config bounds the retry loop. MaxRetries counts retries after the initial
// attempt, so MaxRetries 3 allows four attempts in total.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor spreads each wait by ±factor to avoid synchronized
	// retry storms; 0.1 means ±10%.
	JitterFactor float64
}

// DefaultConfig retries five times over roughly a minute
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

func (c *Config) normalized() Config {
	cfg := *c
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.JitterFactor < 0 {
		cfg.JitterFactor = 0
	}
	if cfg.JitterFactor > 1 {
		cfg.JitterFactor = 1
	}
	return cfg
}

// Operation is the function being retried
type Operation func(ctx context.Context) error

// PermanentError stops the retry loop immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// RetryableError marks an error as explicitly transient. Unwrapped errors
// are retried anyway; the wrapper exists for callers that want to be
// explicit at the failure site.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks an error as transient
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Result reports how the retry loop ended. Err is nil on success;
// LastError carries the error from the final attempt either way.
type Result struct {
	Err       error
	Attempts  int
	LastError error
}

// Do runs op until it succeeds, returns a permanent error, exhausts
// MaxRetries, or the context ends. A nil config uses DefaultConfig.
func Do(ctx context.Context, config *Config, op Operation) *Result {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := config.normalized()
	result := &Result{}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			result.Err = ErrContextCanceled
			return result
		}
		result.Attempts = attempt + 1

		err := op(ctx)
		if err == nil {
			return result
		}
		result.LastError = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			result.Err = perm.Err
			result.LastError = perm.Err
			return result
		}
		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			result.Err = ErrContextCanceled
			return result
		case <-time.After(backoff(&cfg, attempt)):
		}
	}

	result.Err = ErrMaxRetriesExceeded
	return result
}

// backoff computes the wait before retry attempt+1
func backoff(cfg *Config, attempt int) time.Duration {
	wait := float64(cfg.InitialInterval) * math.Pow(cfg.Multiplier, float64(attempt))
	if cfg.JitterFactor > 0 {
		spread := wait * cfg.JitterFactor
		wait += (rand.Float64()*2 - 1) * spread
	}
	if wait > float64(cfg.MaxInterval) {
		wait = float64(cfg.MaxInterval)
	}
	if wait < 0 {
		wait = float64(cfg.InitialInterval)
	}
	return time.Duration(wait)
}
