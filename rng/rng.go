// Package rng provides the randomness used by the game engine. Keeping it
// behind a small interface lets tests seed deterministic sequences.
package rng

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrEmpty is returned by Pick when the sequence has no elements.
var ErrEmpty = errors.New("rng: empty sequence")

// Source yields random picks and shuffles. Implementations must be safe for
// concurrent use.
type Source interface {
	// Pick returns one element of s chosen uniformly at random.
	Pick(s []int) (int, error)
	// Shuffle returns a new slice with the elements of s in random order.
	Shuffle(s []int) []int
}

type source struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Source seeded from the current time.
func New() Source {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Source with a fixed seed, for reproducible sequences.
func NewSeeded(seed int64) Source {
	return &source{r: rand.New(rand.NewSource(seed))}
}

func (s *source) Pick(seq []int) (int, error) {
	if len(seq) == 0 {
		return 0, ErrEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq[s.r.Intn(len(seq))], nil
}

func (s *source) Shuffle(seq []int) []int {
	out := make([]int, len(seq))
	copy(out, seq)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
