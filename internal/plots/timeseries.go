package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// TimeSeries draws every run of a condition as a faint trace with the
// per-index mean over the condition's runs on top.
func TimeSeries(in Input, opts Options, path string) error {
	var panels []*plot.Plot
	for _, m := range in.Metrics {
		p := plot.New()
		p.Title.Text = m + " over time"
		p.X.Label.Text = "Index"
		p.Y.Label.Text = m

		for i, label := range in.Labels {
			var (
				traces [][]float64
				first  *plotter.Line
			)
			for _, src := range in.Table.GroupSources(label) {
				idx, vals := in.Table.Series(src, m)
				x, y := finite(idx, vals)
				if len(x) < 2 {
					continue
				}
				line, err := plotter.NewLine(xys(x, y))
				if err != nil {
					return fmt.Errorf("trace %s/%s: %w", m, label, err)
				}
				line.LineStyle.Color = translucent(labelColor(i), 77)
				line.LineStyle.Width = vg.Points(1)
				p.Add(line)
				if first == nil {
					first = line
				}
				traces = append(traces, vals)
			}
			if first == nil {
				continue
			}
			p.Legend.Add(in.labelText(label), first)

			x, y := finite(indexMean(traces))
			if len(x) < 2 {
				continue
			}
			mean, err := plotter.NewLine(xys(x, y))
			if err != nil {
				return fmt.Errorf("mean %s/%s: %w", m, label, err)
			}
			mean.LineStyle.Color = labelColor(i)
			mean.LineStyle.Width = vg.Points(2)
			p.Add(mean)
			p.Legend.Add(in.labelText(label)+" (mean)", mean)
		}
		panels = append(panels, p)
	}
	if len(panels) == 0 {
		return fmt.Errorf("no metrics to plot")
	}
	w := vg.Length(opts.WidthIn) * vg.Inch
	return saveGrid(path, column(panels), w, panelHeight(opts)*vg.Length(len(panels)), opts.DPI)
}

// indexMean averages traces position by position, ignoring NaN and
// traces shorter than the position.
func indexMean(traces [][]float64) (index, mean []float64) {
	n := 0
	for _, t := range traces {
		n = max(n, len(t))
	}
	index = make([]float64, n)
	mean = make([]float64, n)
	for i := range n {
		sum, count := 0.0, 0
		for _, t := range traces {
			if i < len(t) && !math.IsNaN(t[i]) {
				sum += t[i]
				count++
			}
		}
		index[i] = float64(i)
		mean[i] = math.NaN()
		if count > 0 {
			mean[i] = sum / float64(count)
		}
	}
	return index, mean
}
