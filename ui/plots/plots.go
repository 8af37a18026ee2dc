// Package plots draws the demo's component functions as curves, the Go
// counterpart of the original project's python visualization helpers.
package plots

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChainCurves plots y = x² and the chained z = (x²)² over [xmin, xmax]
// with n sample points each, saving the plot as a PNG to path.
func ChainCurves(path string, xmin, xmax float64, n int) error {
	if n < 2 {
		return errors.Errorf("plots.ChainCurves: need at least 2 sample points, got %d", n)
	}
	if xmax <= xmin {
		return errors.Errorf("plots.ChainCurves: empty range [%g, %g]", xmin, xmax)
	}

	square := make(plotter.XYs, n)
	chained := make(plotter.XYs, n)
	step := (xmax - xmin) / float64(n-1)
	for i := 0; i < n; i++ {
		x := xmin + float64(i)*step
		y := x * x
		square[i] = plotter.XY{X: x, Y: y}
		chained[i] = plotter.XY{X: x, Y: y * y}
	}

	p := plot.New()
	p.Title.Text = "component-wise square and its chain"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "value"
	p.Legend.Top = true

	squareLine, err := plotter.NewLine(square)
	if err != nil {
		return errors.Wrap(err, "plots.ChainCurves: building y=x² line")
	}
	chainedLine, err := plotter.NewLine(chained)
	if err != nil {
		return errors.Wrap(err, "plots.ChainCurves: building z=(x²)² line")
	}
	chainedLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(squareLine, chainedLine)
	p.Legend.Add("y = x²", squareLine)
	p.Legend.Add("z = (x²)²", chainedLine)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "plots.ChainCurves: saving to %s", path)
	}
	return nil
}
