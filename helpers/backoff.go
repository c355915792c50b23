package helpers

import (
	"sync"
	"time"

	"github.com/temoto/atomic_clock"
)

// Backoff computes limited exponential retry delays. Each Failure() grows the
// next delay by K (default 2) between Min and Max; Attempts>0 sets a give-up
// threshold observable via Exhausted(). Safe for concurrent use.
type Backoff struct {
	Min      time.Duration
	Max      time.Duration
	K        float32
	Attempts int // 0 = unlimited

	mu    sync.Mutex
	next  time.Duration
	tries int
	last  atomic_clock.Clock
}

// Failure records a failed attempt and returns the delay to wait before the
// next one. The first delay is Min.
func (b *Backoff) Failure() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last.SetNow()
	b.tries++
	if b.next == 0 {
		b.next = b.Min
		return b.next
	}
	k := b.K
	if k == 0 {
		k = 2
	}
	b.next = time.Duration(float32(b.next) * k)
	if b.next > b.Max {
		b.next = b.Max
	}
	return b.next
}

func (b *Backoff) Reset() {
	b.mu.Lock()
	b.next = 0
	b.tries = 0
	b.mu.Unlock()
}

// Exhausted reports whether the attempt budget is spent.
func (b *Backoff) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Attempts > 0 && b.tries >= b.Attempts
}

func (b *Backoff) Tries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tries
}

// SinceLast returns the time since the most recent Failure, for logs.
func (b *Backoff) SinceLast() time.Duration { return atomic_clock.Since(&b.last) }
