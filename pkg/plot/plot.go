// Package plot renders corrected-vs-reference S-parameter traces for human
// inspection. It is peripheral glue around gonum/plot and carries no
// calibration logic.
package plot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/practable/vnacal/pkg/rf"
)

// Quantity selects what is plotted against frequency.
type Quantity string

const (
	MagnitudeDB Quantity = "db"
	PhaseDeg    Quantity = "deg"
)

func trace(n *rf.Network, i, j int, q Quantity) plotter.XYs {
	var ys []float64
	if q == PhaseDeg {
		ys = n.ParameterDeg(i, j)
	} else {
		ys = n.ParameterDB(i, j)
	}
	pts := make(plotter.XYs, len(ys))
	for k := range ys {
		pts[k].X = n.Frequency().At(k) / 1e9
		pts[k].Y = ys[k]
	}
	return pts
}

// SParameter writes a PNG comparing S(i,j) of the given networks over
// frequency in GHz. Line labels come from the network names.
func SParameter(path string, i, j int, q Quantity, networks ...*rf.Network) error {
	if len(networks) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	for _, n := range networks[1:] {
		if err := rf.SameAxis(networks[0].Frequency(), n); err != nil {
			return err
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("S%d%d", i+1, j+1)
	p.X.Label.Text = "Frequency (GHz)"
	if q == PhaseDeg {
		p.Y.Label.Text = fmt.Sprintf("S%d%d (degrees)", i+1, j+1)
	} else {
		p.Y.Label.Text = fmt.Sprintf("S%d%d (dB)", i+1, j+1)
	}

	for idx, n := range networks {
		line, err := plotter.NewLine(trace(n, i, j, q))
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(idx)
		line.Dashes = plotutil.Dashes(idx)
		p.Add(line)
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("network %d", idx+1)
		}
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
