package process

import "time"

// Observer receives a notification for every invocation. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveRun(inv Invocation, out CapturedOutput, err error, elapsed time.Duration)
	ObserveStart(inv Invocation, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(Invocation, CapturedOutput, error, time.Duration) {}

func (nopObserver) ObserveStart(Invocation, error) {}
