package plots

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/signalnine/runstats/internal/stats"
)

// corrGrid lays a square correlation matrix out with row 0 at the top.
type corrGrid [][]float64

func (g corrGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g corrGrid) Z(c, r int) float64 { return g[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(len(g) - 1 - r) }

// CorrelationHeatmap draws one annotated Pearson correlation matrix of
// the metrics per condition label, side by side.
func CorrelationHeatmap(in Input, opts Options, path string) error {
	n := len(in.Metrics)
	if n == 0 {
		return fmt.Errorf("no metrics to plot")
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	pal := cmap.Palette(255)

	var row []*plot.Plot
	for _, label := range in.Labels {
		cols := make([][]float64, n)
		for j, m := range in.Metrics {
			cols[j] = groupColumn(in, label, m)
		}
		grid := corrGrid(stats.CorrelationMatrix(cols))

		p := plot.New()
		p.Title.Text = "Correlation Matrix - " + in.labelText(label)
		hm := plotter.NewHeatMap(grid, pal)
		hm.Min, hm.Max = -1, 1
		hm.NaN = color.Gray{Y: 200}
		p.Add(hm)

		var (
			pts    plotter.XYs
			labels []string
		)
		for r := range n {
			for c := range n {
				pts = append(pts, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
				if v := grid.Z(c, r); math.IsNaN(v) {
					labels = append(labels, "")
				} else {
					labels = append(labels, fmt.Sprintf("%.2f", v))
				}
			}
		}
		annot, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
		if err != nil {
			return fmt.Errorf("annotating %s: %w", label, err)
		}
		for i := range annot.TextStyle {
			annot.TextStyle[i].XAlign = draw.XCenter
			annot.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(annot)

		xt := make([]plot.Tick, n)
		yt := make([]plot.Tick, n)
		for i, m := range in.Metrics {
			xt[i] = plot.Tick{Value: grid.X(i), Label: m}
			yt[i] = plot.Tick{Value: grid.Y(i), Label: m}
		}
		p.X.Tick.Marker = plot.ConstantTicks(xt)
		p.Y.Tick.Marker = plot.ConstantTicks(yt)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Min, p.X.Max = -0.5, float64(n)-0.5
		p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
		row = append(row, p)
	}

	w := vg.Length(opts.WidthIn) * vg.Inch
	h := w / vg.Length(max(len(row), 1)) * 1.2
	return saveGrid(path, [][]*plot.Plot{row}, w, h, opts.DPI)
}

// groupColumn returns metric for label's rows with NaN kept, so that
// columns stay row-aligned for pairwise correlation.
func groupColumn(in Input, label, metric string) []float64 {
	vals := in.Table.Column(metric)
	var out []float64
	for i, l := range in.Table.Labels {
		if l == label {
			out = append(out, vals[i])
		}
	}
	return out
}
