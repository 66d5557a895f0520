// Package plots renders comparison charts for a condition-labelled
// table as PNG files.
package plots

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/signalnine/runstats/internal/dataset"
	"github.com/signalnine/runstats/internal/runner"
	"github.com/signalnine/runstats/internal/stats"
)

const (
	TimeSeriesFile   = "time_series_plots.png"
	CorrelationFile  = "correlation_heatmap.png"
	DistributionFile = "distribution_plots.png"
	ViolinFile       = "violin_plots.png"
	SummaryFile      = "summary_stats.png"
)

type Options struct {
	Dir string
	// WidthIn is the width of a full-width panel in inches.
	WidthIn float64
	DPI     int
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Input is what every renderer draws from. Metrics must already be
// filtered to columns present in Table.
type Input struct {
	Table       *dataset.Table
	Metrics     []string
	Labels      []string
	Comparisons []stats.Comparison
}

// comparison returns the first comparison recorded for metric, if any.
func (in Input) comparison(metric string) (stats.Comparison, bool) {
	for _, c := range in.Comparisons {
		if c.Metric == metric {
			return c, true
		}
	}
	return stats.Comparison{}, false
}

func (in Input) labelText(label string) string {
	if in.Table.Condition == "" {
		return label
	}
	return in.Table.Condition + "=" + label
}

// Jobs returns one pool job per output image.
func Jobs(in Input, opts Options) []runner.Job {
	var jobs []runner.Job
	add := func(name string, render func(Input, Options, string) error) {
		path := filepath.Join(opts.Dir, name)
		jobs = append(jobs, runner.Job{Name: name, Run: func() error {
			if err := render(in, opts, path); err != nil {
				return err
			}
			opts.logger().Debug("wrote plot", zap.String("path", path))
			return nil
		}})
	}
	for _, m := range in.Metrics {
		add(BoxplotFile(m), func(in Input, opts Options, path string) error {
			return Boxplot(in, m, opts, path)
		})
	}
	add(TimeSeriesFile, TimeSeries)
	add(CorrelationFile, CorrelationHeatmap)
	add(DistributionFile, Distributions)
	add(ViolinFile, Violins)
	add(SummaryFile, SummaryBars)
	return jobs
}

// Files lists the images Jobs would produce, in the same order.
func Files(in Input) []string {
	var files []string
	for _, m := range in.Metrics {
		files = append(files, BoxplotFile(m))
	}
	return append(files, TimeSeriesFile, CorrelationFile, DistributionFile, ViolinFile, SummaryFile)
}

var (
	slugStrip    = regexp.MustCompile(`[/\\()\[\]{}:*?"<>|]`)
	slugCollapse = regexp.MustCompile(`_+`)
)

// Slug turns a metric name into a file-name fragment: lower-cased,
// spaces to underscores, separators and brackets removed.
func Slug(metric string) string {
	s := strings.ToLower(strings.TrimSpace(metric))
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "_")
	s = slugCollapse.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func BoxplotFile(metric string) string {
	return "performance_comparison_" + Slug(metric) + ".png"
}

func labelColor(i int) color.Color {
	return plotutil.Color(i)
}

func translucent(c color.Color, alpha uint8) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = alpha
	return n
}

func panelHeight(opts Options) vg.Length {
	return vg.Length(opts.WidthIn/3) * vg.Inch
}

// saveGrid lays plots out in rows and columns on one PNG canvas. Nil
// entries leave an empty tile.
func saveGrid(path string, grid [][]*plot.Plot, w, h vg.Length, dpi int) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("nothing to draw")
	}
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      len(grid[0]),
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i, p := range grid[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// column stacks single plots into a one-column grid.
func column(ps []*plot.Plot) [][]*plot.Plot {
	grid := make([][]*plot.Plot, len(ps))
	for i, p := range ps {
		grid[i] = []*plot.Plot{p}
	}
	return grid
}

func finite(xs, ys []float64) (outX, outY []float64) {
	for i := range xs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}
