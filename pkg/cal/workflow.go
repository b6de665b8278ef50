package cal

import (
	"fmt"

	"github.com/practable/vnacal/pkg/ideal"
	"github.com/practable/vnacal/pkg/rf"
)

// Method names a complete correction workflow as selected on the command
// line or in a service request.
type Method string

const (
	MethodEightTerm  Method = "8term"
	MethodTwelveTerm Method = "12term"
	MethodSOLT       Method = "solt"
	MethodOnePort    Method = "oneport"
	MethodHybrid     Method = "hybrid"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodEightTerm, MethodTwelveTerm, MethodSOLT, MethodOnePort, MethodHybrid:
		return m, nil
	default:
		return "", fmt.Errorf("unknown method %q (want 8term, 12term, solt, oneport or hybrid)", s)
	}
}

// CorrectTwoPort runs a two-port calibration of the given variant from
// measured short/open/load/thru standards and applies it to the DUT. The
// ideal standards are generated on the measured frequency axis with the
// supplied matched-load reflection.
func CorrectTwoPort(variant Variant, short, open, load, thru, dut *rf.Network, loadGamma complex128) (*rf.Network, error) {
	gen := ideal.NewGenerator(short.Frequency(), 50)
	ideals, err := gen.SOLT(loadGamma, 2)
	if err != nil {
		return nil, err
	}
	idealThru, err := gen.Thru()
	if err != nil {
		return nil, err
	}
	ideals = append(ideals, idealThru)

	engine := NewTwoPort(variant, ideals, []*rf.Network{short, open, load, thru}, 1)
	if err := engine.Run(); err != nil {
		return nil, err
	}
	return engine.ApplyCal(dut)
}

// correctReflection one-port-corrects S(p,p) of the DUT using the S(p,p)
// entries of the measured standards as one-port measurements.
func correctReflection(short, open, load, dut *rf.Network, p int, loadGamma complex128) (*rf.Network, error) {
	gen := ideal.NewGenerator(short.Frequency(), 50)
	ideals, err := gen.SOLT(loadGamma, 1)
	if err != nil {
		return nil, err
	}

	measured := make([]*rf.Network, 0, 3)
	for _, n := range []*rf.Network{short, open, load} {
		m := n
		if n.Ports() == 2 {
			if m, err = rf.OnePortFromParameter(n, p, p, n.Name); err != nil {
				return nil, err
			}
		}
		measured = append(measured, m)
	}

	engine := NewOnePort(ideals, measured)
	if err := engine.Run(); err != nil {
		return nil, err
	}

	rawRefl, err := rf.OnePortFromParameter(dut, p, p, dut.Name)
	if err != nil {
		return nil, err
	}
	return engine.ApplyCal(rawRefl)
}

// CorrectOnePort corrects only the DUT's reflections with two independent
// 3-term one-port calibrations (port 1 and port 2), leaving transmission
// terms as measured.
func CorrectOnePort(short, open, load, dut *rf.Network, loadGamma complex128) (*rf.Network, error) {
	s11, err := correctReflection(short, open, load, dut, 0, loadGamma)
	if err != nil {
		return nil, err
	}
	s22, err := correctReflection(short, open, load, dut, 1, loadGamma)
	if err != nil {
		return nil, err
	}
	return Hybrid(dut, s11, s22)
}

// CorrectHybrid applies the 12-term correction for transmission and
// substitutes independently one-port-corrected S11/S22, since a dedicated
// one-port cal tracks reflections better than the full two-port solve.
func CorrectHybrid(short, open, load, thru, dut *rf.Network, loadGamma complex128) (*rf.Network, error) {
	twoPort, err := CorrectTwoPort(TwelveTerm, short, open, load, thru, dut, loadGamma)
	if err != nil {
		return nil, err
	}
	s11, err := correctReflection(short, open, load, dut, 0, loadGamma)
	if err != nil {
		return nil, err
	}
	s22, err := correctReflection(short, open, load, dut, 1, loadGamma)
	if err != nil {
		return nil, err
	}
	return Hybrid(twoPort, s11, s22)
}

// Correct dispatches a method name to the matching workflow.
func Correct(method Method, short, open, load, thru, dut *rf.Network, loadGamma complex128) (*rf.Network, error) {
	switch method {
	case MethodEightTerm:
		return CorrectTwoPort(EightTerm, short, open, load, thru, dut, loadGamma)
	case MethodTwelveTerm:
		return CorrectTwoPort(TwelveTerm, short, open, load, thru, dut, loadGamma)
	case MethodSOLT:
		return CorrectTwoPort(SOLT, short, open, load, thru, dut, loadGamma)
	case MethodOnePort:
		return CorrectOnePort(short, open, load, dut, loadGamma)
	case MethodHybrid:
		return CorrectHybrid(short, open, load, thru, dut, loadGamma)
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}
