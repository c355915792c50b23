package head

import (
	"math"
	"sync"
)

// Sequencer issues command sequence numbers: Next returns the current value
// then advances modulo 0xFFFFFFFF, so the maximum u32 is skipped on wrap.
// Panel firmware in the field expects this wrap point; do not change it.
// One Sequencer per head instance, safe under concurrent callers.
type Sequencer struct {
	mu sync.Mutex
	n  uint32
}

func NewSequencer(start uint32) *Sequencer {
	return &Sequencer{n: start % math.MaxUint32}
}

func (s *Sequencer) Next() uint32 {
	s.mu.Lock()
	v := s.n
	s.n = (s.n + 1) % math.MaxUint32
	s.mu.Unlock()
	return v
}
