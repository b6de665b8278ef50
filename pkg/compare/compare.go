// Package compare checks a corrected network against a reference within
// explicit tolerances. A single named validity predicate decides which
// frequency points are above the noise floor and worth comparing.
package compare

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/practable/vnacal/pkg/rf"
)

// Tolerances bound the disagreement allowed between a corrected network
// and a reference. Points whose reference magnitude is below NoiseFloorDB
// are excluded from transmission checks.
type Tolerances struct {
	NoiseFloorDB   float64 // validity floor for transmission terms, dB
	MaxMagnitudeSS float64 // max sum of squared dB error over the sweep
	MaxPhaseDeg    float64 // max absolute phase error at any valid point
}

// DefaultTolerances are the dataset acceptance limits: −70 dB noise floor,
// 5 dB² magnitude error budget, 5° phase.
func DefaultTolerances() Tolerances {
	return Tolerances{
		NoiseFloorDB:   -70,
		MaxMagnitudeSS: 5,
		MaxPhaseDeg:    5,
	}
}

// Valid is the validity predicate: it reports, per frequency point,
// whether magnitudeDB is above the noise floor and therefore meaningful to
// compare.
func (t Tolerances) Valid(magnitudeDB []float64) []bool {
	mask := make([]bool, len(magnitudeDB))
	for i, db := range magnitudeDB {
		mask[i] = db > t.NoiseFloorDB
	}
	return mask
}

// maskedSquares returns the element-wise squared differences with invalid
// points zeroed.
func maskedSquares(a, b []float64, mask []bool) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		if mask == nil || mask[i] {
			d := a[i] - b[i]
			out[i] = d * d
		}
	}
	return out
}

// ParameterResult is the comparison outcome for one S-parameter.
type ParameterResult struct {
	Label        string
	MagnitudeSS  float64 // sum of squared dB error over valid points
	MaxPhaseErr  float64 // largest absolute phase error over valid points, degrees
	ValidPoints  int
	TotalPoints  int
	MagnitudeOK  bool
	PhaseOK      bool
	PhaseChecked bool
}

// OK reports whether every checked quantity is within tolerance.
func (r ParameterResult) OK() bool {
	return r.MagnitudeOK && (!r.PhaseChecked || r.PhaseOK)
}

// Parameter compares S(i,j) of corrected against reference. Transmission
// terms (i != j) are masked by the validity predicate and phase-checked;
// reflection terms are compared in magnitude only over the full sweep.
func (t Tolerances) Parameter(corrected, reference *rf.Network, i, j int, label string) (ParameterResult, error) {
	if err := rf.SameAxis(corrected.Frequency(), reference); err != nil {
		return ParameterResult{}, err
	}

	cdb := corrected.ParameterDB(i, j)
	rdb := reference.ParameterDB(i, j)

	res := ParameterResult{Label: label, TotalPoints: len(cdb), ValidPoints: len(cdb)}

	var mask []bool
	if i != j {
		mask = t.Valid(cdb)
		res.ValidPoints = 0
		for _, ok := range mask {
			if ok {
				res.ValidPoints++
			}
		}
	}

	res.MagnitudeSS = floats.Sum(maskedSquares(cdb, rdb, mask))
	res.MagnitudeOK = res.MagnitudeSS < t.MaxMagnitudeSS

	if i != j {
		res.PhaseChecked = true
		cdeg := corrected.ParameterDeg(i, j)
		rdeg := reference.ParameterDeg(i, j)
		for k := range cdeg {
			if !mask[k] {
				continue
			}
			if e := math.Abs(cdeg[k] - rdeg[k]); e > res.MaxPhaseErr {
				res.MaxPhaseErr = e
			}
		}
		res.PhaseOK = res.MaxPhaseErr <= t.MaxPhaseDeg
	}

	return res, nil
}

// TwoPort compares all four S-parameters of a corrected two-port network
// against a reference.
func (t Tolerances) TwoPort(corrected, reference *rf.Network) ([]ParameterResult, error) {
	var out []ParameterResult
	for _, e := range []struct {
		i, j  int
		label string
	}{
		{0, 0, "s11"}, {0, 1, "s12"}, {1, 0, "s21"}, {1, 1, "s22"},
	} {
		r, err := t.Parameter(corrected, reference, e.i, e.j, e.label)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
