package spclient

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryPolicy decides how long to wait before retrying a failed request.
// retryCount is 1 for the first retry. A negative delay stops retrying.
type RetryPolicy interface {
	NextRetryDelay(retryCount int, err error) time.Duration
}

// RetryPolicyFunc adapts an ordinary function to RetryPolicy.
type RetryPolicyFunc func(retryCount int, err error) time.Duration

func (f RetryPolicyFunc) NextRetryDelay(retryCount int, err error) time.Duration {
	return f(retryCount, err)
}

// NoRetry never retries.
var NoRetry = RetryPolicyFunc(func(int, error) time.Duration { return -1 })

// DefaultRetryPolicy honours Retry-After, gives up on definitive server
// answers and otherwise backs off linearly.
type DefaultRetryPolicy struct {
	MaxRetries int
	Step       time.Duration
	// MaxDelay caps a server supplied Retry-After. Zero means no cap.
	MaxDelay time.Duration
}

const (
	DefaultMaxRetries = 4
	DefaultRetryStep  = time.Second
	DefaultMaxDelay   = 5 * time.Minute
)

// NewDefaultRetryPolicy returns the policy with its default settings.
func NewDefaultRetryPolicy() *DefaultRetryPolicy {
	return &DefaultRetryPolicy{
		MaxRetries: DefaultMaxRetries,
		Step:       DefaultRetryStep,
		MaxDelay:   DefaultMaxDelay,
	}
}

func (p *DefaultRetryPolicy) NextRetryDelay(retryCount int, err error) time.Duration {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return -1
	}
	var se *ServiceError
	if errors.As(err, &se) {
		if se.RetryAfter >= 0 {
			if p.MaxDelay > 0 && se.RetryAfter > p.MaxDelay {
				return p.MaxDelay
			}
			return se.RetryAfter
		}
		if se.HasErrorResponse() {
			return -1
		}
		if se.StatusCode == http.StatusNotFound {
			return -1
		}
	}
	if retryCount > p.MaxRetries {
		return -1
	}
	return time.Duration(retryCount) * p.Step
}
