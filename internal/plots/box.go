package plots

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Boxplot draws one box per condition label for metric.
func Boxplot(in Input, metric string, opts Options, path string) error {
	p := plot.New()
	p.Title.Text = metric + " by " + in.Table.Condition
	p.X.Label.Text = in.Table.Condition
	p.Y.Label.Text = metric

	var names []string
	for i, label := range in.Labels {
		vals := in.Table.Group(label, metric)
		if len(vals) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(len(names)), plotter.Values(vals))
		if err != nil {
			return fmt.Errorf("boxplot %s/%s: %w", metric, label, err)
		}
		box.FillColor = translucent(labelColor(i), 160)
		p.Add(box)
		names = append(names, label)
	}
	if len(names) == 0 {
		return fmt.Errorf("boxplot %s: no data", metric)
	}
	p.NominalX(names...)
	p.Add(plotter.NewGrid())

	w := vg.Length(opts.WidthIn) * vg.Inch
	return saveGrid(path, [][]*plot.Plot{{p}}, w, w*0.6, opts.DPI)
}
