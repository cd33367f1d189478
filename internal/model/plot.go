package model

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func newPlot(t table) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = t.title
	p.X.Label.Text = t.xLabel
	p.Y.Label.Text = t.yLabel

	var lines []any
	for i, name := range t.seriesNames() {
		pts := make(plotter.XYs, len(t.args))
		for x := range t.args {
			pts[x] = plotter.XY{X: t.args[x], Y: t.values[x][i]}
		}
		lines = append(lines, name, pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	return p, nil
}

func writePlot(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
