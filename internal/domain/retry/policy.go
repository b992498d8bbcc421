// Package retry defines the backoff used when redelivering notifications.
package retry

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// BackoffType identifies the backoff strategy.
type BackoffType string

const (
	BackoffFixed       BackoffType = "fixed"
	BackoffLinear      BackoffType = "linear"
	BackoffExponential BackoffType = "exponential"
)

// Policy defines a retry strategy.
type Policy struct {
	MaxAttempts     int           `json:"max_attempts"`
	InitialDelay    time.Duration `json:"initial_delay"`
	MaxDelay        time.Duration `json:"max_delay"`
	BackoffStrategy BackoffType   `json:"backoff_strategy"`
	JitterFactor    float64       `json:"jitter_factor"` // 0.0-1.0
}

// DefaultPolicy returns the delivery policy used by the notification workers.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialDelay:    30 * time.Second,
		MaxDelay:        30 * time.Minute,
		BackoffStrategy: BackoffExponential,
		JitterFactor:    0.2,
	}
}

// CalculateDelay calculates the delay before the given retry attempt (1-based).
func (p Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	raw := float64(p.InitialDelay)
	switch p.BackoffStrategy {
	case BackoffLinear:
		raw *= float64(attempt)
	case BackoffExponential:
		raw *= math.Pow(2, float64(attempt-1))
	}

	var delay time.Duration
	switch {
	case p.MaxDelay > 0 && raw > float64(p.MaxDelay):
		delay = p.MaxDelay
	case raw >= math.MaxInt64:
		delay = time.Duration(math.MaxInt64)
	default:
		delay = time.Duration(raw)
	}

	if p.JitterFactor > 0 {
		jitter := float64(delay) * p.JitterFactor * (rand.Float64()*2 - 1)
		delay = time.Duration(float64(delay) + jitter)
		if delay < 0 {
			delay = 0
		}
	}

	return delay
}

// ShouldRetry reports whether another attempt is allowed after `attempts` failures.
func (p Policy) ShouldRetry(attempts int, err error) bool {
	if IsPermanent(err) {
		return false
	}
	return attempts < p.MaxAttempts
}

// NextAttemptAt returns when the attempt following `attempts` failures should run.
func (p Policy) NextAttemptAt(now time.Time, attempts int) time.Time {
	return now.Add(p.CalculateDelay(attempts))
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
