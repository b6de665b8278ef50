package rf

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Network is a frequency-indexed complex S-parameter matrix for a 1- or
// 2-port device. The backing storage is owned by the network: parameter
// accessors copy in and out, so no two networks ever alias the same data.
type Network struct {
	Name  string
	freq  *Frequency
	ports int
	// s holds len(freq) ports*ports matrices in row-major order.
	s []complex128
}

// NewNetwork creates a zero-valued network on the given axis.
func NewNetwork(freq *Frequency, ports int, name string) (*Network, error) {
	if freq == nil || freq.Len() == 0 {
		return nil, ErrEmptyFrequency
	}
	if ports != 1 && ports != 2 {
		return nil, fmt.Errorf("%w: got %d, want 1 or 2", ErrPortCount, ports)
	}
	return &Network{
		Name:  name,
		freq:  freq,
		ports: ports,
		s:     make([]complex128, freq.Len()*ports*ports),
	}, nil
}

// Frequency returns the shared frequency axis.
func (n *Network) Frequency() *Frequency {
	return n.freq
}

// Ports returns the port count (1 or 2).
func (n *Network) Ports() int {
	return n.ports
}

func (n *Network) index(k, i, j int) int {
	return (k*n.ports+i)*n.ports + j
}

// At returns S(i,j) at frequency index k. Ports are 0-based, so S21 is
// At(k, 1, 0).
func (n *Network) At(k, i, j int) complex128 {
	return n.s[n.index(k, i, j)]
}

// Set assigns S(i,j) at frequency index k.
func (n *Network) Set(k, i, j int, v complex128) {
	n.s[n.index(k, i, j)] = v
}

// Parameter returns a copy of S(i,j) over the whole sweep.
func (n *Network) Parameter(i, j int) []complex128 {
	out := make([]complex128, n.freq.Len())
	for k := range out {
		out[k] = n.At(k, i, j)
	}
	return out
}

// SetParameter assigns S(i,j) over the whole sweep from vals, which must
// have one entry per frequency point.
func (n *Network) SetParameter(i, j int, vals []complex128) error {
	if len(vals) != n.freq.Len() {
		return fmt.Errorf("%w: %d values for %d frequency points",
			ErrFrequencyMismatch, len(vals), n.freq.Len())
	}
	for k, v := range vals {
		n.Set(k, i, j, v)
	}
	return nil
}

// Clone returns a deep copy sharing only the frequency axis.
func (n *Network) Clone() *Network {
	c := &Network{
		Name:  n.Name,
		freq:  n.freq,
		ports: n.ports,
		s:     make([]complex128, len(n.s)),
	}
	copy(c.s, n.s)
	return c
}

// WithZeroedParameter returns a copy with S(i,j) set to zero at every
// frequency. Degenerate/partial measurements are modelled this way instead
// of writing into a shared backing array.
func (n *Network) WithZeroedParameter(i, j int) *Network {
	c := n.Clone()
	for k := 0; k < n.freq.Len(); k++ {
		c.Set(k, i, j, 0)
	}
	return c
}

// ParameterDB returns |S(i,j)| in dB over the sweep.
func (n *Network) ParameterDB(i, j int) []float64 {
	out := make([]float64, n.freq.Len())
	for k := range out {
		out[k] = 20 * math.Log10(cmplx.Abs(n.At(k, i, j)))
	}
	return out
}

// ParameterDeg returns the phase of S(i,j) in degrees over the sweep.
func (n *Network) ParameterDeg(i, j int) []float64 {
	out := make([]float64, n.freq.Len())
	for k := range out {
		out[k] = cmplx.Phase(n.At(k, i, j)) * 180 / math.Pi
	}
	return out
}

// TwoPortFromOnePorts assembles a 2-port network whose S11 and S22 are the
// reflections of two independent 1-port measurements and whose transmission
// terms are zero (no coupling between the ports is assumed). The inputs
// must share a frequency axis; their storage is copied, never aliased.
func TwoPortFromOnePorts(port1, port2 *Network, name string) (*Network, error) {
	if port1.Ports() != 1 || port2.Ports() != 1 {
		return nil, fmt.Errorf("%w: inputs must be 1-port", ErrPortCount)
	}
	if err := SameAxis(port1.Frequency(), port2); err != nil {
		return nil, err
	}
	out, err := NewNetwork(port1.Frequency(), 2, name)
	if err != nil {
		return nil, err
	}
	for k := 0; k < port1.Frequency().Len(); k++ {
		out.Set(k, 0, 0, port1.At(k, 0, 0))
		out.Set(k, 1, 1, port2.At(k, 0, 0))
	}
	return out, nil
}

// OnePortFromParameter extracts S(i,j) of a network into a new 1-port
// network on the same axis. The hybrid workflow uses this to pull S11/S22
// of a measured DUT into the one-port engine.
func OnePortFromParameter(n *Network, i, j int, name string) (*Network, error) {
	out, err := NewNetwork(n.Frequency(), 1, name)
	if err != nil {
		return nil, err
	}
	for k := 0; k < n.Frequency().Len(); k++ {
		out.Set(k, 0, 0, n.At(k, i, j))
	}
	return out, nil
}
