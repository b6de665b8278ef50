package cal

import (
	"fmt"

	"github.com/practable/vnacal/pkg/rf"
)

// Hybrid merges independently corrected results into one network: S11 and
// S22 come from the two one-port-corrected reflections, S12 and S21 from
// the two-port-corrected result. It is a pure data merge with no solve;
// frequency-axis mismatch is the only failure mode.
func Hybrid(twoPort, s11, s22 *rf.Network) (*rf.Network, error) {
	if twoPort.Ports() != 2 {
		return nil, fmt.Errorf("%w: two-port result is %d-port", rf.ErrPortCount, twoPort.Ports())
	}
	if s11.Ports() != 1 || s22.Ports() != 1 {
		return nil, fmt.Errorf("%w: reflection results must be 1-port", rf.ErrPortCount)
	}
	if err := rf.SameAxis(twoPort.Frequency(), s11, s22); err != nil {
		return nil, err
	}

	out := twoPort.Clone()
	out.Name = twoPort.Name + "-hybrid"
	for k := 0; k < twoPort.Frequency().Len(); k++ {
		out.Set(k, 0, 0, s11.At(k, 0, 0))
		out.Set(k, 1, 1, s22.At(k, 0, 0))
	}
	return out, nil
}
