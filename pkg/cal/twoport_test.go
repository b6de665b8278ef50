package cal

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/practable/vnacal/pkg/ideal"
	"github.com/practable/vnacal/pkg/rf"
)

// testTerms returns a full synthetic error model varying slightly with
// frequency index so no two points solve identically.
func testTerms(k int) TwelveTerms {
	d := complex(0.001*float64(k), 0.002*float64(k))
	return TwelveTerms{
		ForwardDirectivity:  complex(0.05, 0.02) + d,
		ForwardSourceMatch:  complex(0.15, -0.05) + d,
		ForwardReflTracking: complex(0.92, 0.08),
		ForwardLoadMatch:    complex(0.07, 0.03) + d,
		ForwardTransTrack:   complex(0.88, -0.12),
		ReverseDirectivity:  complex(0.04, -0.03) + d,
		ReverseSourceMatch:  complex(0.11, 0.06) + d,
		ReverseReflTracking: complex(0.95, -0.04),
		ReverseLoadMatch:    complex(0.09, -0.02) + d,
		ReverseTransTrack:   complex(0.90, 0.10),
	}
}

// consistentTerms returns an error model realizable by two error boxes with
// no leakage: load match equals the opposite port's source match. All
// variants must recover measurements generated from such a model.
func consistentTerms(k int) TwelveTerms {
	t := testTerms(k)
	t.ForwardLoadMatch = t.ReverseSourceMatch
	t.ReverseLoadMatch = t.ForwardSourceMatch
	return t
}

// measureTwoPort embeds a true network through a per-frequency error model.
func measureTwoPort(n *rf.Network, terms func(int) TwelveTerms) *rf.Network {
	m := n.Clone()
	for k := 0; k < n.Frequency().Len(); k++ {
		setMatrix(m, k, terms(k).embed(matrixAt(n, k)))
	}
	return m
}

// standardSet builds the ideal SOLT set plus thru, and their measurements
// through the given error model.
func standardSet(t *testing.T, f *rf.Frequency, terms func(int) TwelveTerms) (ideals, measured []*rf.Network) {
	t.Helper()
	gen := ideal.NewGenerator(f, 50)
	ideals, err := gen.SOLT(0, 2)
	if err != nil {
		t.Fatalf("SOLT failed: %v", err)
	}
	thru, err := gen.Thru()
	if err != nil {
		t.Fatalf("Thru failed: %v", err)
	}
	ideals = append(ideals, thru)

	measured = make([]*rf.Network, len(ideals))
	for i, n := range ideals {
		measured[i] = measureTwoPort(n, terms)
	}
	return ideals, measured
}

func solvedTwoPort(t *testing.T, variant Variant, f *rf.Frequency, terms func(int) TwelveTerms) (*TwoPort, []*rf.Network, []*rf.Network) {
	t.Helper()
	ideals, measured := standardSet(t, f, terms)
	var c *TwoPort
	if variant == SOLT {
		c = NewSOLT(ideals, measured)
	} else {
		c = NewTwoPort(variant, ideals, measured, 1)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("%s Run failed: %v", variant, err)
	}
	return c, ideals, measured
}

func assertMatrixNear(t *testing.T, got, want *rf.Network, tol float64) {
	t.Helper()
	for k := 0; k < got.Frequency().Len(); k++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				if d := cmplx.Abs(got.At(k, i, j) - want.At(k, i, j)); d > tol {
					t.Fatalf("S%d%d error %g at point %d", i+1, j+1, d, k)
				}
			}
		}
	}
}

// TestTwelveTermCorrectsThru is the concrete acceptance scenario: a thru
// measured through exact standards must correct to S21=S12=1, S11=S22=0
// within 1e-9.
func TestTwelveTermCorrectsThru(t *testing.T) {
	f := testFreq(t, 5)
	c, ideals, measured := solvedTwoPort(t, TwelveTerm, f, testTerms)

	corrected, err := c.ApplyCal(measured[3])
	if err != nil {
		t.Fatalf("ApplyCal failed: %v", err)
	}
	assertMatrixNear(t, corrected, ideals[3], 1e-9)
}

func TestTwelveTermRoundTripsDUT(t *testing.T) {
	f := testFreq(t, 5)
	c, _, _ := solvedTwoPort(t, TwelveTerm, f, testTerms)

	dut, err := rf.NewNetwork(f, 2, "dut")
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	for k := 0; k < f.Len(); k++ {
		setMatrix(dut, k, [2][2]complex128{
			{complex(0.2, 0.1), complex(0.6, -0.3)},
			{complex(0.7, 0.2), complex(-0.1, 0.15)},
		})
	}

	raw, err := c.Embed(dut)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	back, err := c.ApplyCal(raw)
	if err != nil {
		t.Fatalf("ApplyCal failed: %v", err)
	}
	assertMatrixNear(t, back, dut, 1e-9)
}

func TestEightTermCorrectsThru(t *testing.T) {
	f := testFreq(t, 5)
	c, ideals, measured := solvedTwoPort(t, EightTerm, f, consistentTerms)

	corrected, err := c.ApplyCal(measured[3])
	if err != nil {
		t.Fatalf("ApplyCal failed: %v", err)
	}
	assertMatrixNear(t, corrected, ideals[3], 1e-9)
}

// TestCrossMethodConsistency corrects one DUT with all three variants from
// measurements generated by a physically consistent error model; the
// corrected results must agree.
func TestCrossMethodConsistency(t *testing.T) {
	f := testFreq(t, 6)

	dut, err := rf.NewNetwork(f, 2, "dut")
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	for k := 0; k < f.Len(); k++ {
		setMatrix(dut, k, [2][2]complex128{
			{complex(0.3, -0.1), complex(0.75, 0.1)},
			{complex(0.72, 0.15), complex(0.25, 0.05)},
		})
	}
	raw := measureTwoPort(dut, consistentTerms)

	var results []*rf.Network
	for _, variant := range []Variant{EightTerm, TwelveTerm, SOLT} {
		c, _, _ := solvedTwoPort(t, variant, f, consistentTerms)
		corrected, err := c.ApplyCal(raw)
		if err != nil {
			t.Fatalf("%s ApplyCal failed: %v", variant, err)
		}
		assertMatrixNear(t, corrected, dut, 1e-6)
		results = append(results, corrected)
	}
	assertMatrixNear(t, results[1], results[0], 1e-6)
	assertMatrixNear(t, results[2], results[1], 1e-6)
}

func TestTwoPortApplyIdempotent(t *testing.T) {
	f := testFreq(t, 4)
	c, _, measured := solvedTwoPort(t, TwelveTerm, f, testTerms)

	first, err := c.ApplyCal(measured[3])
	if err != nil {
		t.Fatalf("first ApplyCal failed: %v", err)
	}
	second, err := c.ApplyCal(measured[3])
	if err != nil {
		t.Fatalf("second ApplyCal failed: %v", err)
	}
	assertMatrixNear(t, second, first, 0)
}

// TestTwoPortDegenerateDUT zeroes transmission and one reflection before
// applying the calibration; the engine must run the same algebra without
// raising.
func TestTwoPortDegenerateDUT(t *testing.T) {
	f := testFreq(t, 3)
	c, _, measured := solvedTwoPort(t, TwelveTerm, f, testTerms)

	partial := measured[3].
		WithZeroedParameter(0, 1).
		WithZeroedParameter(1, 0).
		WithZeroedParameter(1, 1)

	corrected, err := c.ApplyCal(partial)
	if err != nil {
		t.Fatalf("ApplyCal on degenerate DUT failed: %v", err)
	}
	for k := 0; k < f.Len(); k++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				v := corrected.At(k, i, j)
				if cmplx.IsNaN(v) || cmplx.IsInf(v) {
					t.Fatalf("S%d%d not finite at %d: %v", i+1, j+1, k, v)
				}
			}
		}
	}
	// Input remains untouched.
	if partial.At(0, 1, 0) != 0 {
		t.Fatal("input network was mutated")
	}
}

func TestTwoPortInsufficientThrus(t *testing.T) {
	f := testFreq(t, 2)
	ideals, measured := standardSet(t, f, testTerms)
	c := NewTwoPort(TwelveTerm, ideals[:3], measured[:3], 0)
	if err := c.Run(); !errors.Is(err, ErrInsufficientThrus) {
		t.Fatalf("expected ErrInsufficientThrus, got %v", err)
	}
}

func TestTwoPortInsufficientReflects(t *testing.T) {
	f := testFreq(t, 2)
	ideals, measured := standardSet(t, f, testTerms)
	c := NewTwoPort(TwelveTerm, ideals[1:], measured[1:], 1)
	if err := c.Run(); !errors.Is(err, ErrInsufficientStandards) {
		t.Fatalf("expected ErrInsufficientStandards, got %v", err)
	}
}

func TestSOLTRequiresExactSet(t *testing.T) {
	f := testFreq(t, 2)
	ideals, measured := standardSet(t, f, testTerms)
	extraIdeals := append([]*rf.Network{ideals[0]}, ideals...)
	extraMeasured := append([]*rf.Network{measured[0]}, measured...)
	c := NewSOLT(extraIdeals, extraMeasured)
	if err := c.Run(); !errors.Is(err, ErrInsufficientStandards) {
		t.Fatalf("expected ErrInsufficientStandards, got %v", err)
	}
}

func TestTwoPortSingularStandards(t *testing.T) {
	f := testFreq(t, 2)
	ideals, measured := standardSet(t, f, testTerms)
	// Duplicate the short in place of the open: rank-deficient reflects.
	ideals[1] = ideals[0]
	measured[1] = measured[0]
	c := NewTwoPort(TwelveTerm, ideals, measured, 1)
	if err := c.Run(); !errors.Is(err, ErrSingularStandardSet) {
		t.Fatalf("expected ErrSingularStandardSet, got %v", err)
	}
}

func TestTwoPortFrequencyMismatch(t *testing.T) {
	f := testFreq(t, 3)
	g := testFreq(t, 4)
	c, _, _ := solvedTwoPort(t, TwelveTerm, f, testTerms)

	other, err := rf.NewNetwork(g, 2, "dut")
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	if _, err := c.ApplyCal(other); !errors.Is(err, rf.ErrFrequencyMismatch) {
		t.Fatalf("expected ErrFrequencyMismatch, got %v", err)
	}
}

func TestTwoPortApplyBeforeRun(t *testing.T) {
	f := testFreq(t, 2)
	_, measured := standardSet(t, f, testTerms)
	c := NewTwoPort(TwelveTerm, nil, nil, 1)
	if _, err := c.ApplyCal(measured[3]); !errors.Is(err, ErrNotRun) {
		t.Fatalf("expected ErrNotRun, got %v", err)
	}
}

// TestTwoPortModelImmutable confirms application does not alter the solved
// terms.
func TestTwoPortModelImmutable(t *testing.T) {
	f := testFreq(t, 3)
	c, _, measured := solvedTwoPort(t, TwelveTerm, f, testTerms)

	before, err := c.Terms()
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	if _, err := c.ApplyCal(measured[3]); err != nil {
		t.Fatalf("ApplyCal failed: %v", err)
	}
	after, err := c.Terms()
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	for k := range before {
		if before[k] != after[k] {
			t.Fatalf("terms changed at %d", k)
		}
	}
}

// TestTwelveTermLeakageFromLoad injects leakage into the load standard's
// transmission and checks the solve picks it up as the isolation terms.
func TestTwelveTermLeakageFromLoad(t *testing.T) {
	f := testFreq(t, 3)
	leaky := func(k int) TwelveTerms {
		tt := testTerms(k)
		tt.ForwardIsolation = complex(0.01, 0.005)
		tt.ReverseIsolation = complex(0.008, -0.004)
		return tt
	}
	c, ideals, measured := solvedTwoPort(t, TwelveTerm, f, leaky)

	terms, err := c.Terms()
	if err != nil {
		t.Fatalf("Terms failed: %v", err)
	}
	for k, got := range terms {
		if cmplx.Abs(got.ForwardIsolation-complex(0.01, 0.005)) > 1e-9 {
			t.Fatalf("forward isolation at %d = %v", k, got.ForwardIsolation)
		}
		if cmplx.Abs(got.ReverseIsolation-complex(0.008, -0.004)) > 1e-9 {
			t.Fatalf("reverse isolation at %d = %v", k, got.ReverseIsolation)
		}
	}

	corrected, err := c.ApplyCal(measured[3])
	if err != nil {
		t.Fatalf("ApplyCal failed: %v", err)
	}
	assertMatrixNear(t, corrected, ideals[3], 1e-9)
}
