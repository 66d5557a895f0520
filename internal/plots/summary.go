package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/signalnine/runstats/internal/stats"
)

// SummaryBars draws the mean of every metric per condition with ±std
// error bars, one panel per metric.
func SummaryBars(in Input, opts Options, path string) error {
	var panels []*plot.Plot
	for _, m := range in.Metrics {
		p := plot.New()
		p.Title.Text = m
		p.Y.Label.Text = "Mean ± std"

		var (
			names []string
			errs  struct {
				plotter.XYs
				plotter.YErrors
			}
		)
		for i, label := range in.Labels {
			s := stats.Describe(in.Table.Group(label, m))
			if s.Count == 0 {
				continue
			}
			x := float64(len(names))
			bar, err := plotter.NewBarChart(plotter.Values{float64(s.Mean)}, vg.Points(24))
			if err != nil {
				return fmt.Errorf("bar %s/%s: %w", m, label, err)
			}
			bar.XMin = x
			bar.Color = labelColor(i)
			bar.LineStyle.Width = 0
			p.Add(bar)

			sd := float64(s.Std)
			if math.IsNaN(sd) {
				sd = 0
			}
			errs.XYs = append(errs.XYs, plotter.XY{X: x, Y: float64(s.Mean)})
			errs.YErrors = append(errs.YErrors, struct{ Low, High float64 }{sd, sd})
			names = append(names, label)
		}
		if len(names) == 0 {
			continue
		}
		bars, err := plotter.NewYErrorBars(errs)
		if err != nil {
			return fmt.Errorf("error bars %s: %w", m, err)
		}
		p.Add(bars)
		p.NominalX(names...)
		p.X.Tick.Label.Rotation = math.Pi / 6
		panels = append(panels, p)
	}
	if len(panels) == 0 {
		return fmt.Errorf("no metrics to plot")
	}

	const cols = 2
	var grid [][]*plot.Plot
	for i := 0; i < len(panels); i += cols {
		row := make([]*plot.Plot, cols)
		copy(row, panels[i:min(i+cols, len(panels))])
		grid = append(grid, row)
	}
	w := vg.Length(opts.WidthIn) * vg.Inch
	return saveGrid(path, grid, w, w/cols*0.8*vg.Length(len(grid)), opts.DPI)
}
