package schedule

import (
	"errors"
	"math/rand"
)

// Sequence is the circular category schedule a node walks for the lifetime
// of the exhibit. The list itself is fixed at construction; only the cursor
// moves. The engine is the single writer of the cursor, so there is no
// internal locking here.
type Sequence struct {
	cats []string
	step int
}

var ErrEmptySchedule = errors.New("schedule: no categories")

// New builds a sequence over ids, cursor at step 0.
func New(ids []string) (*Sequence, error) {
	if len(ids) == 0 {
		return nil, ErrEmptySchedule
	}
	cats := make([]string, len(ids))
	copy(cats, ids)
	return &Sequence{cats: cats}, nil
}

// Expand produces rounds shuffled copies of cats back to back. The shuffle is
// seeded so every node in the fleet derives the identical sequence from the
// same master list.
func Expand(cats []string, rounds int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	out := make([]string, 0, len(cats)*rounds)
	round := make([]string, len(cats))
	copy(round, cats)
	for i := 0; i < rounds; i++ {
		rng.Shuffle(len(round), func(a, b int) {
			round[a], round[b] = round[b], round[a]
		})
		out = append(out, round...)
	}
	return out
}

// Current returns the category at the cursor.
func (s *Sequence) Current() string {
	return s.cats[s.step]
}

// Advance moves the cursor one step, wrapping at the end, and returns the new
// current category.
func (s *Sequence) Advance() string {
	s.step = (s.step + 1) % len(s.cats)
	return s.cats[s.step]
}

// Step returns the cursor position, always in [0, Len).
func (s *Sequence) Step() int {
	return s.step
}

// SetStep moves the cursor to n, normalized into the circular domain. A
// follower resynchronizing trusts the received step unconditionally.
func (s *Sequence) SetStep(n int) {
	n %= len(s.cats)
	if n < 0 {
		n += len(s.cats)
	}
	s.step = n
}

// Len returns the schedule length.
func (s *Sequence) Len() int {
	return len(s.cats)
}
