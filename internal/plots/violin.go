package plots

import (
	"fmt"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const violinHalfWidth = 0.4

// Violins draws a mirrored KDE per condition for each metric, two
// panels per row, with a narrow boxplot inside each violin.
func Violins(in Input, opts Options, path string) error {
	var panels []*plot.Plot
	for _, m := range in.Metrics {
		p, err := violinPanel(in, m)
		if err != nil {
			return err
		}
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
	return saveGrid(path, grid, w, w/cols*vg.Length(len(grid)), opts.DPI)
}

func violinPanel(in Input, metric string) (*plot.Plot, error) {
	scale, unit := 1.0, metric
	if strings.HasPrefix(metric, "Wall Time") {
		scale, unit = 1.0/1000, "Wall Time (s)"
	}

	p := plot.New()
	p.Title.Text = metric
	if c, ok := in.comparison(metric); ok {
		p.Title.Text += fmt.Sprintf("\n%s p=%.2e\nCohen's d=%.2f", c.Selected.Name, float64(c.Selected.P), float64(c.CohensD))
	}
	p.Y.Label.Text = unit
	p.X.Label.Text = in.Table.Condition

	var names []string
	for i, label := range in.Labels {
		vals := in.Table.Group(label, metric)
		if len(vals) == 0 {
			continue
		}
		scaled := make(plotter.Values, len(vals))
		for j, v := range vals {
			scaled[j] = v * scale
		}
		loc := float64(len(names))

		if ys, dens, ok := density(scaled); ok {
			peak := 0.0
			for _, d := range dens {
				peak = max(peak, d)
			}
			outline := make(plotter.XYs, 0, 2*len(ys))
			for j := range ys {
				outline = append(outline, plotter.XY{X: loc - violinHalfWidth*dens[j]/peak, Y: ys[j]})
			}
			for j := len(ys) - 1; j >= 0; j-- {
				outline = append(outline, plotter.XY{X: loc + violinHalfWidth*dens[j]/peak, Y: ys[j]})
			}
			body, err := plotter.NewPolygon(outline)
			if err != nil {
				return nil, fmt.Errorf("violin %s/%s: %w", metric, label, err)
			}
			body.Color = translucent(labelColor(i), 140)
			body.LineStyle.Color = labelColor(i)
			p.Add(body)
		}

		box, err := plotter.NewBoxPlot(vg.Points(6), loc, scaled)
		if err != nil {
			return nil, fmt.Errorf("violin box %s/%s: %w", metric, label, err)
		}
		box.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(box)
		names = append(names, label)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("violin %s: no data", metric)
	}
	p.NominalX(names...)
	return p, nil
}
