// Package cal solves and applies VNA systematic-error models. A calibration
// engine is built from ideal/measured standard pairs, solved once with Run,
// and then applied to any number of measured networks with ApplyCal. The
// solved error model is owned by the engine and never mutated by
// application.
package cal

import (
	"fmt"

	"github.com/practable/vnacal/pkg/rf"
)

// OnePortTerms is the 3-term error model at a single frequency point.
type OnePortTerms struct {
	Directivity        complex128 // E_D
	SourceMatch        complex128 // E_S
	ReflectionTracking complex128 // E_R
}

// correct recovers the true reflection coefficient from a raw measurement.
func (t OnePortTerms) correct(measured complex128) complex128 {
	d := measured - t.Directivity
	return d / (t.ReflectionTracking + t.SourceMatch*d)
}

// embed predicts the raw measurement of a known true reflection.
func (t OnePortTerms) embed(gamma complex128) complex128 {
	return t.Directivity + t.ReflectionTracking*gamma/(1-t.SourceMatch*gamma)
}

// OnePort solves the 3-term one-port error model from at least three known
// standards. With exactly three the per-frequency solve is direct; with
// more it is a least-squares fit over all supplied standards.
type OnePort struct {
	ideals   []*rf.Network
	measured []*rf.Network
	terms    []OnePortTerms
	solved   bool
}

// NewOnePort builds an engine from parallel lists of ideal and measured
// one-port standards. Validation happens in Run.
func NewOnePort(ideals, measured []*rf.Network) *OnePort {
	return &OnePort{ideals: ideals, measured: measured}
}

// Run solves the error model at every frequency point. It fails with
// ErrInsufficientStandards for fewer than three standards,
// rf.ErrFrequencyMismatch if any axis disagrees, and ErrSingularStandardSet
// if the standards are rank-deficient at any frequency (the whole run
// fails; there is no partial success).
func (c *OnePort) Run() error {
	if len(c.ideals) != len(c.measured) {
		return fmt.Errorf("%w: %d ideals, %d measured",
			ErrStandardCount, len(c.ideals), len(c.measured))
	}
	if len(c.ideals) < 3 {
		return fmt.Errorf("%w: one-port calibration needs 3, got %d",
			ErrInsufficientStandards, len(c.ideals))
	}
	freq := c.measured[0].Frequency()
	all := make([]*rf.Network, 0, len(c.ideals)+len(c.measured))
	all = append(all, c.ideals...)
	all = append(all, c.measured...)
	if err := rf.SameAxis(freq, all...); err != nil {
		return err
	}

	nf := freq.Len()
	terms := make([]OnePortTerms, nf)
	err := forEachFrequency(nf, func(k int) error {
		pairs := make([]gammaPair, len(c.ideals))
		for i := range c.ideals {
			pairs[i] = gammaPair{
				ideal:    c.ideals[i].At(k, 0, 0),
				measured: c.measured[i].At(k, 0, 0),
			}
		}
		t, err := solveOnePort(pairs)
		if err != nil {
			return fmt.Errorf("%w at %g Hz", err, freq.At(k))
		}
		terms[k] = t
		return nil
	})
	if err != nil {
		return err
	}

	c.terms = terms
	c.solved = true
	return nil
}

// Terms returns a copy of the solved per-frequency error model. It fails
// with ErrNotRun before Run completes.
func (c *OnePort) Terms() ([]OnePortTerms, error) {
	if !c.solved {
		return nil, ErrNotRun
	}
	out := make([]OnePortTerms, len(c.terms))
	copy(out, c.terms)
	return out, nil
}

// ApplyCal removes the solved error model from a measured one-port network,
// returning a new corrected network. The input is not modified, and the
// engine may be applied repeatedly without re-running the solve.
func (c *OnePort) ApplyCal(dut *rf.Network) (*rf.Network, error) {
	if !c.solved {
		return nil, ErrNotRun
	}
	if dut.Ports() != 1 {
		return nil, fmt.Errorf("%w: one-port calibration applied to %d-port network",
			rf.ErrPortCount, dut.Ports())
	}
	if err := rf.SameAxis(c.measured[0].Frequency(), dut); err != nil {
		return nil, err
	}
	out := dut.Clone()
	for k := 0; k < dut.Frequency().Len(); k++ {
		out.Set(k, 0, 0, c.terms[k].correct(dut.At(k, 0, 0)))
	}
	return out, nil
}

// Embed is the inverse of ApplyCal: it applies the solved error model to a
// true network to predict what the instrument would measure.
func (c *OnePort) Embed(n *rf.Network) (*rf.Network, error) {
	if !c.solved {
		return nil, ErrNotRun
	}
	if n.Ports() != 1 {
		return nil, fmt.Errorf("%w: one-port calibration applied to %d-port network",
			rf.ErrPortCount, n.Ports())
	}
	if err := rf.SameAxis(c.measured[0].Frequency(), n); err != nil {
		return nil, err
	}
	out := n.Clone()
	for k := 0; k < n.Frequency().Len(); k++ {
		out.Set(k, 0, 0, c.terms[k].embed(n.At(k, 0, 0)))
	}
	return out, nil
}

type gammaPair struct {
	ideal    complex128
	measured complex128
}

// solveOnePort fits the bilinear error-box model Γm = (a·Γ + b)/(c·Γ + 1)
// to the supplied ideal/measured pairs. Each pair contributes the linear
// row [Γ, 1, −Γ·Γm]·[a b c]ᵀ = Γm; three pairs solve directly, more are
// fitted by least squares. The error terms follow as E_D = b, E_S = −c,
// E_R = a − b·c.
func solveOnePort(pairs []gammaPair) (OnePortTerms, error) {
	rows := make([][]complex128, len(pairs))
	rhs := make([]complex128, len(pairs))
	for i, p := range pairs {
		rows[i] = []complex128{p.ideal, 1, -p.ideal * p.measured}
		rhs[i] = p.measured
	}
	x, err := leastSquares(rows, rhs)
	if err != nil {
		return OnePortTerms{}, err
	}
	a, b, c := x[0], x[1], x[2]
	return OnePortTerms{
		Directivity:        b,
		SourceMatch:        -c,
		ReflectionTracking: a - b*c,
	}, nil
}
