package schedule

import (
	"testing"
)

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); err != ErrEmptySchedule {
		t.Fatalf("New(nil) err = %v, want ErrEmptySchedule", err)
	}
}

func TestCircularity(t *testing.T) {
	cats := []string{"ocean", "forest", "desert", "glacier", "city"}
	s, err := New(cats)
	if err != nil {
		t.Fatal(err)
	}

	// From any starting step, Len advances return to the same category and
	// the step index never leaves [0, Len).
	for start := 0; start < s.Len(); start++ {
		s.SetStep(start)
		before := s.Current()
		for i := 0; i < s.Len(); i++ {
			s.Advance()
			if st := s.Step(); st < 0 || st >= s.Len() {
				t.Fatalf("step %d out of range [0,%d)", st, s.Len())
			}
		}
		if got := s.Current(); got != before {
			t.Fatalf("after %d advances from %d: category %q, want %q", s.Len(), start, got, before)
		}
		if s.Step() != start {
			t.Fatalf("after full cycle step = %d, want %d", s.Step(), start)
		}
	}
}

func TestAdvanceReturnsNewCurrent(t *testing.T) {
	s, _ := New([]string{"a", "b", "c"})
	if got := s.Advance(); got != "b" {
		t.Fatalf("Advance() = %q, want b", got)
	}
	if got := s.Advance(); got != "c" {
		t.Fatalf("Advance() = %q, want c", got)
	}
	if got := s.Advance(); got != "a" {
		t.Fatalf("Advance() at end = %q, want wrap to a", got)
	}
}

func TestSetStepNormalizes(t *testing.T) {
	s, _ := New([]string{"a", "b", "c", "d"})

	cases := []struct {
		in, want int
	}{
		{0, 0},
		{3, 3},
		{4, 0},
		{9, 1},
		{-1, 3},
	}
	for _, c := range cases {
		s.SetStep(c.in)
		if got := s.Step(); got != c.want {
			t.Errorf("SetStep(%d): step = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestExpandDeterministic(t *testing.T) {
	cats := []string{"ocean", "forest", "desert"}

	a := Expand(cats, 10, 42)
	b := Expand(cats, 10, 42)
	if len(a) != 30 || len(b) != 30 {
		t.Fatalf("Expand length = %d/%d, want 30", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, a[i], b[i])
		}
	}

	// Every round is a permutation of the master list.
	for r := 0; r < 10; r++ {
		seen := map[string]int{}
		for _, c := range a[r*3 : (r+1)*3] {
			seen[c]++
		}
		for _, c := range cats {
			if seen[c] != 1 {
				t.Fatalf("round %d is not a permutation: %v", r, seen)
			}
		}
	}
}
