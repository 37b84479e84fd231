package peer

import (
	"errors"
	"sync/atomic"
	"time"
)

var ErrRetryStopped = errors.New("retry stopped")

// RetryPolicy bounds renegotiation attempts (ICE restarts, transcription
// capture restarts). Linear backoff, stop flag checked before each retry
// fires rather than racing a timer.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

type Retrier struct {
	policy  RetryPolicy
	stopped atomic.Bool
}

func NewRetrier(policy RetryPolicy) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Retrier{policy: policy}
}

// Do runs fn until it succeeds, attempts run out, or Stop is called.
func (r *Retrier) Do(fn func() error) error {
	var err error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if r.stopped.Load() {
			return ErrRetryStopped
		}
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * r.policy.Backoff)
			if r.stopped.Load() {
				return ErrRetryStopped
			}
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}

func (r *Retrier) Stop() {
	r.stopped.Store(true)
}
