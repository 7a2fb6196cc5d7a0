package imagematch

import (
	"math/rand"
	"sync"
	"time"
)

// Selector picks one entry from a non-empty candidate set.
type Selector interface {
	Select(candidates []Entry) Entry
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(candidates []Entry) Entry

// Select calls f.
func (f SelectorFunc) Select(candidates []Entry) Entry { return f(candidates) }

// FirstSelector always picks the first candidate in catalog order.
var FirstSelector Selector = SelectorFunc(func(c []Entry) Entry { return c[0] })

// RandomSelector picks uniformly at random. It is safe for concurrent use.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector returns a selector seeded from the clock.
func NewRandomSelector() *RandomSelector {
	return NewSeededSelector(time.Now().UnixNano())
}

// NewSeededSelector returns a selector with a fixed seed.
func NewSeededSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // photo variety, not security
}

// Select returns a uniformly chosen candidate.
func (s *RandomSelector) Select(candidates []Entry) Entry {
	s.mu.Lock()
	i := s.rng.Intn(len(candidates))
	s.mu.Unlock()
	return candidates[i]
}
