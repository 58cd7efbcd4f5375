// Package clock schedules deferred and periodic callbacks for the game engine.
//
// Real runs callbacks on runtime timers. Manual fires them synchronously from
// Advance, which makes timing in tests deterministic.
package clock

import (
	"sync"
	"time"
)

// Handle cancels a scheduled callback
type Handle interface {
	// Stop prevents any further firing. It reports whether the callback was still pending.
	Stop() bool
}

// Clock schedules callbacks
type Clock interface {
	// AfterFunc runs f once after d.
	AfterFunc(d time.Duration, f func()) Handle
	// Every runs f every d until stopped.
	Every(d time.Duration, f func()) Handle
}

// Real returns a Clock backed by the runtime timers
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

func (realClock) Every(d time.Duration, f func()) Handle {
	t := &ticker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.loop(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) loop(f func()) {
	for {
		select {
		case <-t.ticker.C:
			f()
		case <-t.done:
			return
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}
