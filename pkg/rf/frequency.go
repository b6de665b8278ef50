// Package rf holds the frequency-indexed S-parameter data model shared by
// the calibration engines and the peripheral I/O packages. A Frequency is
// created once per measurement session and shared by pointer between every
// network taking part in the same calibration.
package rf

// Frequency is an ordered sweep of frequency points in Hz.
type Frequency struct {
	points []float64
}

// NewFrequency builds a Frequency from points in Hz. The points must be
// strictly increasing.
func NewFrequency(hz []float64) (*Frequency, error) {
	if len(hz) == 0 {
		return nil, ErrEmptyFrequency
	}
	for i := 1; i < len(hz); i++ {
		if hz[i] <= hz[i-1] {
			return nil, ErrFrequencyNotSorted
		}
	}
	f := &Frequency{points: make([]float64, len(hz))}
	copy(f.points, hz)
	return f, nil
}

// Len returns the number of frequency points.
func (f *Frequency) Len() int {
	return len(f.points)
}

// Points returns a copy of the frequency points in Hz.
func (f *Frequency) Points() []float64 {
	out := make([]float64, len(f.points))
	copy(out, f.points)
	return out
}

// At returns the frequency in Hz at index i.
func (f *Frequency) At(i int) float64 {
	return f.points[i]
}

// Matches reports whether two axes are interchangeable: either the same
// object, or equal length and identical values.
func (f *Frequency) Matches(other *Frequency) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	if len(f.points) != len(other.points) {
		return false
	}
	for i, p := range f.points {
		if other.points[i] != p {
			return false
		}
	}
	return true
}

// SameAxis checks that every network in ns shares base's frequency axis.
// It is the precondition check used by every multi-network operation.
func SameAxis(base *Frequency, ns ...*Network) error {
	for _, n := range ns {
		if n == nil {
			return ErrFrequencyMismatch
		}
		if !base.Matches(n.Frequency()) {
			return ErrFrequencyMismatch
		}
	}
	return nil
}
