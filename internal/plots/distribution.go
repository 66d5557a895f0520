package plots

import (
	"fmt"
	"math"

	moremath "github.com/aclements/go-moremath/stats"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const kdePoints = 100

// density evaluates a Gaussian KDE of vals over the range holding 99%
// of its mass. ok is false when the sample is too small or has no
// spread.
func density(vals []float64) (xs, ys []float64, ok bool) {
	if len(vals) < 2 {
		return nil, nil, false
	}
	s := moremath.Sample{Xs: vals}
	bw := moremath.BandwidthScott(s)
	if !(bw > 0) {
		bw = moremath.BandwidthSilverman(s)
	}
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, nil, false
	}
	kde := &moremath.KDE{Sample: s, Kernel: moremath.GaussianKernel, Bandwidth: bw}
	lo, hi := kde.Bounds()
	xs = make([]float64, kdePoints)
	ys = make([]float64, kdePoints)
	for i := range xs {
		x := lo + (hi-lo)*float64(i)/float64(kdePoints-1)
		xs[i], ys[i] = x, kde.PDF(x)
	}
	return xs, ys, true
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts
}

// Distributions draws a normalised histogram and KDE per condition,
// one panel per metric.
func Distributions(in Input, opts Options, path string) error {
	var panels []*plot.Plot
	for _, m := range in.Metrics {
		p := plot.New()
		p.Title.Text = m + " Distribution"
		if c, ok := in.comparison(m); ok {
			p.Title.Text += fmt.Sprintf("\np=%.2e, Cohen's d=%.2f", float64(c.MannWhitney.P), float64(c.CohensD))
		}
		p.X.Label.Text = m
		p.Y.Label.Text = "Density"
		p.Legend.Top = true

		for i, label := range in.Labels {
			vals := in.Table.Group(label, m)
			if len(vals) == 0 {
				continue
			}
			hist, err := plotter.NewHist(plotter.Values(vals), 20)
			if err != nil {
				return fmt.Errorf("histogram %s/%s: %w", m, label, err)
			}
			hist.Normalize(1)
			hist.FillColor = translucent(labelColor(i), 64)
			hist.LineStyle.Width = 0
			p.Add(hist)

			xs, ys, ok := density(vals)
			if !ok {
				opts.logger().Debug("skipping density", zap.String("metric", m), zap.String("label", label))
				p.Legend.Add(in.labelText(label), hist)
				continue
			}
			line, err := plotter.NewLine(xys(xs, ys))
			if err != nil {
				return fmt.Errorf("density %s/%s: %w", m, label, err)
			}
			line.LineStyle.Color = labelColor(i)
			line.LineStyle.Width = vg.Points(1.5)
			p.Add(line)
			p.Legend.Add(in.labelText(label), line)
		}
		panels = append(panels, p)
	}
	if len(panels) == 0 {
		return fmt.Errorf("no metrics to plot")
	}
	w := vg.Length(opts.WidthIn) * vg.Inch
	return saveGrid(path, column(panels), w, panelHeight(opts)*vg.Length(len(panels)), opts.DPI)
}
