// Package chart draws sweep results with gonum/plot.
package chart

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SweepKey is the column holding the swept source value.
const SweepKey = "SWEEP1"

// NewSweepPlot plots each series against the sweep column.
func NewSweepPlot(title string, results map[string][]float64, series []string) (*plot.Plot, error) {
	xs, ok := results[SweepKey]
	if !ok {
		return nil, fmt.Errorf("results have no %s column", SweepKey)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Source voltage (V)"
	p.Y.Label.Text = yLabel(series)
	p.Add(plotter.NewGrid())

	for i, name := range series {
		ys, ok := results[name]
		if !ok {
			return nil, fmt.Errorf("unknown series %s", name)
		}
		if len(ys) != len(xs) {
			return nil, fmt.Errorf("series %s has %d points, sweep has %d", name, len(ys), len(xs))
		}

		pts := make(plotter.XYs, len(xs))
		for j := range xs {
			pts[j].X = xs[j]
			pts[j].Y = ys[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// Save renders the plot; the format follows the file extension (.png, .svg, .pdf).
func Save(p *plot.Plot, path string) error {
	if filepath.Ext(path) == "" {
		return fmt.Errorf("output %s needs an extension", path)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func yLabel(series []string) string {
	kinds := map[byte]string{'I': "Current (A)", 'P': "Power (W)", 'V': "Voltage (V)"}
	var label string
	for _, name := range series {
		if name == "" {
			return ""
		}
		l, ok := kinds[name[0]]
		if !ok {
			return ""
		}
		if label != "" && label != l {
			return ""
		}
		label = l
	}
	return label
}
