package cal

import (
	"fmt"
	"math/cmplx"

	"github.com/practable/vnacal/pkg/rf"
)

// Variant selects how the two-port error model is solved.
type Variant string

const (
	// EightTerm solves per-port error boxes from the reflect standards and
	// uses the thru only for the transmission tracking products. Load match
	// falls out of the opposite port's error box; isolation is zero.
	EightTerm Variant = "8-term"

	// TwelveTerm solves forward and reverse error terms independently,
	// taking load match from the thru's corrected reflection and leakage
	// from the matched-load standards' transmission terms.
	TwelveTerm Variant = "12-term"

	// SOLT is the 12-term solve restricted to the classic short-open-load
	// standard set plus exactly one thru.
	SOLT Variant = "solt"
)

// matchedGammaMax is the ideal-reflection magnitude below which a reflect
// standard is treated as a matched load when deriving leakage terms.
const matchedGammaMax = 0.01

// TwelveTerms is the full two-port error model at one frequency point. The
// 8-term solve populates the same structure (with zero leakage), so a
// single application path serves every variant.
type TwelveTerms struct {
	// Forward: source at port 1.
	ForwardDirectivity  complex128 // Edf
	ForwardSourceMatch  complex128 // Esf
	ForwardReflTracking complex128 // Erf
	ForwardLoadMatch    complex128 // Elf
	ForwardTransTrack   complex128 // Etf
	ForwardIsolation    complex128 // Exf
	// Reverse: source at port 2.
	ReverseDirectivity  complex128 // Edr
	ReverseSourceMatch  complex128 // Esr
	ReverseReflTracking complex128 // Err
	ReverseLoadMatch    complex128 // Elr
	ReverseTransTrack   complex128 // Etr
	ReverseIsolation    complex128 // Exr
}

// correct de-embeds the error model from one raw 2×2 measurement. The
// algebra is deterministic: degenerate inputs (externally zeroed entries)
// flow through unchanged rather than raising.
func (t TwelveTerms) correct(m [2][2]complex128) [2][2]complex128 {
	n11 := (m[0][0] - t.ForwardDirectivity) / t.ForwardReflTracking
	n21 := (m[1][0] - t.ForwardIsolation) / t.ForwardTransTrack
	n22 := (m[1][1] - t.ReverseDirectivity) / t.ReverseReflTracking
	n12 := (m[0][1] - t.ReverseIsolation) / t.ReverseTransTrack

	d := (1+n11*t.ForwardSourceMatch)*(1+n22*t.ReverseSourceMatch) -
		n21*n12*t.ForwardLoadMatch*t.ReverseLoadMatch

	var out [2][2]complex128
	out[0][0] = (n11*(1+n22*t.ReverseSourceMatch) - t.ForwardLoadMatch*n21*n12) / d
	out[1][0] = n21 * (1 + n22*(t.ReverseSourceMatch-t.ForwardLoadMatch)) / d
	out[0][1] = n12 * (1 + n11*(t.ForwardSourceMatch-t.ReverseLoadMatch)) / d
	out[1][1] = (n22*(1+n11*t.ForwardSourceMatch) - t.ReverseLoadMatch*n21*n12) / d
	return out
}

// embed predicts the raw measurement of a known true 2×2 response.
func (t TwelveTerms) embed(s [2][2]complex128) [2][2]complex128 {
	det := s[0][0]*s[1][1] - s[1][0]*s[0][1]

	d1 := 1 - t.ForwardSourceMatch*s[0][0] - t.ForwardLoadMatch*s[1][1] +
		t.ForwardSourceMatch*t.ForwardLoadMatch*det
	d2 := 1 - t.ReverseLoadMatch*s[0][0] - t.ReverseSourceMatch*s[1][1] +
		t.ReverseSourceMatch*t.ReverseLoadMatch*det

	var out [2][2]complex128
	out[0][0] = t.ForwardDirectivity + t.ForwardReflTracking*(s[0][0]-t.ForwardLoadMatch*det)/d1
	out[1][0] = t.ForwardIsolation + t.ForwardTransTrack*s[1][0]/d1
	out[1][1] = t.ReverseDirectivity + t.ReverseReflTracking*(s[1][1]-t.ReverseLoadMatch*det)/d2
	out[0][1] = t.ReverseIsolation + t.ReverseTransTrack*s[0][1]/d2
	return out
}

// TwoPort solves a two-port systematic error model from short/open/load
// measurements plus at least one thru. The thru standards must be the last
// nThrus ideal/measured pairs; all earlier pairs are reflect standards.
type TwoPort struct {
	variant  Variant
	ideals   []*rf.Network
	measured []*rf.Network
	nThrus   int
	terms    []TwelveTerms
	solved   bool
}

// NewTwoPort builds an engine for the given variant. Validation happens in
// Run.
func NewTwoPort(variant Variant, ideals, measured []*rf.Network, nThrus int) *TwoPort {
	return &TwoPort{
		variant:  variant,
		ideals:   ideals,
		measured: measured,
		nThrus:   nThrus,
	}
}

// NewEightTerm is shorthand for NewTwoPort(EightTerm, ...).
func NewEightTerm(ideals, measured []*rf.Network, nThrus int) *TwoPort {
	return NewTwoPort(EightTerm, ideals, measured, nThrus)
}

// NewTwelveTerm is shorthand for NewTwoPort(TwelveTerm, ...).
func NewTwelveTerm(ideals, measured []*rf.Network, nThrus int) *TwoPort {
	return NewTwoPort(TwelveTerm, ideals, measured, nThrus)
}

// NewSOLT is shorthand for NewTwoPort(SOLT, ...). Run additionally enforces
// exactly three reflect standards and one thru.
func NewSOLT(ideals, measured []*rf.Network) *TwoPort {
	return NewTwoPort(SOLT, ideals, measured, 1)
}

// Variant reports which solve the engine performs.
func (c *TwoPort) Variant() Variant {
	return c.variant
}

func (c *TwoPort) validate() error {
	if len(c.ideals) != len(c.measured) {
		return fmt.Errorf("%w: %d ideals, %d measured",
			ErrStandardCount, len(c.ideals), len(c.measured))
	}
	if c.nThrus < 1 {
		return fmt.Errorf("%w: n_thrus = %d", ErrInsufficientThrus, c.nThrus)
	}
	reflects := len(c.ideals) - c.nThrus
	if reflects < 3 {
		return fmt.Errorf("%w: two-port calibration needs 3 reflect standards, got %d",
			ErrInsufficientStandards, reflects)
	}
	if c.variant == SOLT && (len(c.ideals) != 4 || c.nThrus != 1) {
		return fmt.Errorf("%w: SOLT takes exactly short, open, load and one thru",
			ErrInsufficientStandards)
	}
	for _, n := range c.ideals {
		if n.Ports() != 2 {
			return fmt.Errorf("%w: ideal standard %q is %d-port", rf.ErrPortCount, n.Name, n.Ports())
		}
	}
	for _, n := range c.measured {
		if n.Ports() != 2 {
			return fmt.Errorf("%w: measured standard %q is %d-port", rf.ErrPortCount, n.Name, n.Ports())
		}
	}
	freq := c.measured[0].Frequency()
	all := make([]*rf.Network, 0, len(c.ideals)+len(c.measured))
	all = append(all, c.ideals...)
	all = append(all, c.measured...)
	return rf.SameAxis(freq, all...)
}

// Run solves the error model at every frequency point. Redundant reflect
// standards are resolved by least squares, never discarded; multiple thrus
// are averaged. A rank-deficient standard set at any frequency fails the
// whole run with ErrSingularStandardSet.
func (c *TwoPort) Run() error {
	if err := c.validate(); err != nil {
		return err
	}

	freq := c.measured[0].Frequency()
	reflects := len(c.ideals) - c.nThrus

	nf := freq.Len()
	terms := make([]TwelveTerms, nf)
	err := forEachFrequency(nf, func(k int) error {
		t, err := c.solveAt(k, reflects)
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

// solveAt computes the error terms at frequency index k from the first
// reflects ideal/measured pairs plus the trailing thru pairs.
func (c *TwoPort) solveAt(k, reflects int) (TwelveTerms, error) {
	fwdPairs := make([]gammaPair, reflects)
	revPairs := make([]gammaPair, reflects)
	for i := 0; i < reflects; i++ {
		fwdPairs[i] = gammaPair{ideal: c.ideals[i].At(k, 0, 0), measured: c.measured[i].At(k, 0, 0)}
		revPairs[i] = gammaPair{ideal: c.ideals[i].At(k, 1, 1), measured: c.measured[i].At(k, 1, 1)}
	}

	fwd, err := solveOnePort(fwdPairs)
	if err != nil {
		return TwelveTerms{}, err
	}
	rev, err := solveOnePort(revPairs)
	if err != nil {
		return TwelveTerms{}, err
	}

	t := TwelveTerms{
		ForwardDirectivity:  fwd.Directivity,
		ForwardSourceMatch:  fwd.SourceMatch,
		ForwardReflTracking: fwd.ReflectionTracking,
		ReverseDirectivity:  rev.Directivity,
		ReverseSourceMatch:  rev.SourceMatch,
		ReverseReflTracking: rev.ReflectionTracking,
	}

	if c.variant != EightTerm {
		// Leakage from the matched-load standards' transmission terms.
		var exf, exr complex128
		var loads int
		for i := 0; i < reflects; i++ {
			if cmplx.Abs(c.ideals[i].At(k, 0, 0)) < matchedGammaMax &&
				cmplx.Abs(c.ideals[i].At(k, 1, 1)) < matchedGammaMax {
				exf += c.measured[i].At(k, 1, 0)
				exr += c.measured[i].At(k, 0, 1)
				loads++
			}
		}
		if loads > 0 {
			t.ForwardIsolation = exf / complex(float64(loads), 0)
			t.ReverseIsolation = exr / complex(float64(loads), 0)
		}
	}

	switch c.variant {
	case EightTerm:
		// Per-port error boxes: load match seen through the thru is the
		// opposite box's port match, and the thru fixes the transmission
		// tracking products e10·e32 and e01·e23.
		t.ForwardLoadMatch = rev.SourceMatch
		t.ReverseLoadMatch = fwd.SourceMatch
		mismatch := 1 - fwd.SourceMatch*rev.SourceMatch
		var etf, etr complex128
		for i := reflects; i < len(c.measured); i++ {
			etf += c.measured[i].At(k, 1, 0) * mismatch
			etr += c.measured[i].At(k, 0, 1) * mismatch
		}
		t.ForwardTransTrack = etf / complex(float64(c.nThrus), 0)
		t.ReverseTransTrack = etr / complex(float64(c.nThrus), 0)
	default:
		// TwelveTerm and SOLT: load match from the thru's corrected
		// reflection, transmission tracking from the thru's transmission.
		var elf, elr, etf, etr complex128
		for i := reflects; i < len(c.measured); i++ {
			lf := fwd.correct(c.measured[i].At(k, 0, 0))
			lr := rev.correct(c.measured[i].At(k, 1, 1))
			elf += lf
			elr += lr
			etf += (c.measured[i].At(k, 1, 0) - t.ForwardIsolation) * (1 - fwd.SourceMatch*lf)
			etr += (c.measured[i].At(k, 0, 1) - t.ReverseIsolation) * (1 - rev.SourceMatch*lr)
		}
		n := complex(float64(c.nThrus), 0)
		t.ForwardLoadMatch = elf / n
		t.ReverseLoadMatch = elr / n
		t.ForwardTransTrack = etf / n
		t.ReverseTransTrack = etr / n
	}

	return t, nil
}

// Terms returns a copy of the solved per-frequency error model. It fails
// with ErrNotRun before Run completes.
func (c *TwoPort) Terms() ([]TwelveTerms, error) {
	if !c.solved {
		return nil, ErrNotRun
	}
	out := make([]TwelveTerms, len(c.terms))
	copy(out, c.terms)
	return out, nil
}

// ApplyCal de-embeds the solved error model from a measured two-port DUT,
// returning a new corrected network. The input is never modified; repeated
// application with the same input yields identical output.
func (c *TwoPort) ApplyCal(dut *rf.Network) (*rf.Network, error) {
	if !c.solved {
		return nil, ErrNotRun
	}
	if dut.Ports() != 2 {
		return nil, fmt.Errorf("%w: two-port calibration applied to %d-port network",
			rf.ErrPortCount, dut.Ports())
	}
	if err := rf.SameAxis(c.measured[0].Frequency(), dut); err != nil {
		return nil, err
	}
	out := dut.Clone()
	for k := 0; k < dut.Frequency().Len(); k++ {
		s := c.terms[k].correct(matrixAt(dut, k))
		setMatrix(out, k, s)
	}
	return out, nil
}

// Embed is the inverse of ApplyCal: it applies the solved error model to a
// true two-port network to predict its raw measurement.
func (c *TwoPort) Embed(n *rf.Network) (*rf.Network, error) {
	if !c.solved {
		return nil, ErrNotRun
	}
	if n.Ports() != 2 {
		return nil, fmt.Errorf("%w: two-port calibration applied to %d-port network",
			rf.ErrPortCount, n.Ports())
	}
	if err := rf.SameAxis(c.measured[0].Frequency(), n); err != nil {
		return nil, err
	}
	out := n.Clone()
	for k := 0; k < n.Frequency().Len(); k++ {
		s := c.terms[k].embed(matrixAt(n, k))
		setMatrix(out, k, s)
	}
	return out, nil
}

func matrixAt(n *rf.Network, k int) [2][2]complex128 {
	return [2][2]complex128{
		{n.At(k, 0, 0), n.At(k, 0, 1)},
		{n.At(k, 1, 0), n.At(k, 1, 1)},
	}
}

func setMatrix(n *rf.Network, k int, s [2][2]complex128) {
	n.Set(k, 0, 0, s[0][0])
	n.Set(k, 0, 1, s[0][1])
	n.Set(k, 1, 0, s[1][0])
	n.Set(k, 1, 1, s[1][1])
}
