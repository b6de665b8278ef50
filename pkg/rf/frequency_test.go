package rf

import (
	"errors"
	"testing"
)

func mustFrequency(t *testing.T, hz []float64) *Frequency {
	t.Helper()
	f, err := NewFrequency(hz)
	if err != nil {
		t.Fatalf("NewFrequency failed: %v", err)
	}
	return f
}

func TestNewFrequencyRejectsEmpty(t *testing.T) {
	if _, err := NewFrequency(nil); !errors.Is(err, ErrEmptyFrequency) {
		t.Fatalf("expected ErrEmptyFrequency, got %v", err)
	}
}

func TestNewFrequencyRejectsUnsorted(t *testing.T) {
	for _, hz := range [][]float64{
		{1e9, 1e9, 2e9},
		{2e9, 1e9},
	} {
		if _, err := NewFrequency(hz); !errors.Is(err, ErrFrequencyNotSorted) {
			t.Fatalf("expected ErrFrequencyNotSorted for %v, got %v", hz, err)
		}
	}
}

func TestFrequencyCopiesInput(t *testing.T) {
	hz := []float64{1e9, 2e9}
	f := mustFrequency(t, hz)
	hz[0] = 9e9
	if f.At(0) != 1e9 {
		t.Fatalf("frequency aliased caller storage: got %g", f.At(0))
	}
}

func TestFrequencyMatches(t *testing.T) {
	a := mustFrequency(t, []float64{1e9, 2e9, 3e9})
	b := mustFrequency(t, []float64{1e9, 2e9, 3e9})
	c := mustFrequency(t, []float64{1e9, 2e9})
	d := mustFrequency(t, []float64{1e9, 2e9, 4e9})

	if !a.Matches(a) {
		t.Fatal("axis must match itself")
	}
	if !a.Matches(b) {
		t.Fatal("equal-valued axes must match")
	}
	if a.Matches(c) {
		t.Fatal("shorter axis must not match")
	}
	if a.Matches(d) {
		t.Fatal("different values must not match")
	}
}

func TestSameAxis(t *testing.T) {
	f := mustFrequency(t, []float64{1e9, 2e9})
	g := mustFrequency(t, []float64{1e9, 3e9})

	n1, _ := NewNetwork(f, 1, "a")
	n2, _ := NewNetwork(g, 1, "b")

	if err := SameAxis(f, n1); err != nil {
		t.Fatalf("matching axis rejected: %v", err)
	}
	if err := SameAxis(f, n1, n2); !errors.Is(err, ErrFrequencyMismatch) {
		t.Fatalf("expected ErrFrequencyMismatch, got %v", err)
	}
}
