package session

import (
	"sync"
	"time"
)

// Clock supplies the current time and periodic callbacks. Sessions take a
// Clock so tests can drive time by hand.
type Clock interface {
	Now() time.Time

	// Every calls fn once per period d until the returned cancel func is
	// called. Cancel is idempotent.
	Every(d time.Duration, fn func()) (cancel func())
}

// RealClock is the wall-clock implementation backed by time.Ticker.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}
