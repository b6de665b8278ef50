// Package ideal generates the theoretical responses of short, open, load
// and thru calibration standards on a given frequency axis.
package ideal

import (
	"fmt"

	"github.com/practable/vnacal/pkg/rf"
)

// DefaultLoadGamma is the residual reflection coefficient historically used
// for a matched load in place of exact zero. The engines in pkg/cal never
// divide by the load reflection, so an exact zero is equally valid; this
// value is kept for compatibility with datasets produced by the older
// tooling.
const DefaultLoadGamma = 1e-99

// Generator produces ideal standards on a fixed frequency axis with a fixed
// reference impedance. Z0 only matters to callers that renormalize; the
// standards themselves are defined by their reflection coefficients.
type Generator struct {
	freq *rf.Frequency
	z0   complex128
}

// NewGenerator returns a Generator for the given axis and reference
// impedance (typically 50 ohms).
func NewGenerator(freq *rf.Frequency, z0 complex128) *Generator {
	return &Generator{freq: freq, z0: z0}
}

// Z0 returns the reference impedance.
func (g *Generator) Z0() complex128 {
	return g.z0
}

// reflect builds an nports standard with the given reflection coefficient
// on every diagonal entry and zero coupling between ports.
func (g *Generator) reflect(gamma complex128, nports int, name string) (*rf.Network, error) {
	n, err := rf.NewNetwork(g.freq, nports, name)
	if err != nil {
		return nil, err
	}
	for k := 0; k < g.freq.Len(); k++ {
		for p := 0; p < nports; p++ {
			n.Set(k, p, p, gamma)
		}
	}
	return n, nil
}

// Short returns an ideal short (Γ = −1) with nports ports.
func (g *Generator) Short(nports int) (*rf.Network, error) {
	return g.reflect(-1, nports, "short")
}

// Open returns an ideal open (Γ = +1) with nports ports.
func (g *Generator) Open(nports int) (*rf.Network, error) {
	return g.reflect(1, nports, "open")
}

// Load returns a load with residual reflection gamma and nports ports. Pass
// 0 for a perfectly matched load, or DefaultLoadGamma to match datasets
// produced with the numerical-workaround epsilon.
func (g *Generator) Load(gamma complex128, nports int) (*rf.Network, error) {
	return g.reflect(gamma, nports, "load")
}

// Thru returns the ideal matched lossless thru: S11 = S22 = 0,
// S21 = S12 = 1. A thru is inherently 2-port.
func (g *Generator) Thru() (*rf.Network, error) {
	n, err := rf.NewNetwork(g.freq, 2, "thru")
	if err != nil {
		return nil, err
	}
	for k := 0; k < g.freq.Len(); k++ {
		n.Set(k, 0, 1, 1)
		n.Set(k, 1, 0, 1)
	}
	return n, nil
}

// SOLT returns the classic one-port standard set (short, open, load) in
// solve order.
func (g *Generator) SOLT(loadGamma complex128, nports int) ([]*rf.Network, error) {
	short, err := g.Short(nports)
	if err != nil {
		return nil, fmt.Errorf("short: %w", err)
	}
	open, err := g.Open(nports)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	load, err := g.Load(loadGamma, nports)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return []*rf.Network{short, open, load}, nil
}
