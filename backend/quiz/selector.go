package quiz

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Selector draws random samples of question ids.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector() *Selector {
	seed := uint64(time.Now().UnixNano())
	return NewSeededSelector(seed, seed>>1|1)
}

// NewSeededSelector gives a reproducible sequence of draws.
func NewSeededSelector(seed1, seed2 uint64) *Selector {
	return &Selector{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Select returns min(count, len(pool)) distinct ids in random order. It
// shuffles a copy of the whole pool (Fisher-Yates) and keeps the head, so
// every id is equally likely and pool is left untouched.
func (s *Selector) Select(pool []uint, count int) []uint {
	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return []uint{}
	}

	ids := append([]uint(nil), pool...)

	s.mu.Lock()
	for i := len(ids) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
	s.mu.Unlock()

	return ids[:count:count]
}
