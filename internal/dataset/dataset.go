package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/config"
)

// ErrNoRows is returned for a CSV file that has a header but no data.
var ErrNoRows = errors.New("no data rows")

// Run holds the numeric columns of one training-run CSV log.
type Run struct {
	Path    string
	Label   string
	Columns []string
	Rows    [][]float64
}

func (r *Run) Len() int { return len(r.Rows) }

// Column returns the values of col in row order, or nil if the run
// does not have it.
func (r *Run) Column(col string) []float64 {
	idx := lo.IndexOf(r.Columns, col)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out
}

// Load reads a CSV file with a header row. Columns whose cells do not
// all parse as numbers are dropped; empty cells become NaN.
func Load(path, label string, logger *zap.Logger) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f, path, label, logger)
}

func parse(r io.Reader, path, label string, logger *zap.Logger) (*Run, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	header := lo.Map(records[0], func(h string, _ int) string {
		return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	})
	body := records[1:]
	if len(body) == 0 {
		return nil, ErrNoRows
	}

	parsed := make([][]float64, len(body))
	numeric := make([]bool, len(header))
	for j := range numeric {
		numeric[j] = true
	}
	for i, rec := range body {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i+2, len(header), len(rec))
		}
		parsed[i] = make([]float64, len(header))
		for j, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				parsed[i][j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric[j] = false
				continue
			}
			parsed[i][j] = v
		}
	}

	run := &Run{Path: path, Label: label}
	var keep []int
	for j, name := range header {
		if !numeric[j] {
			logger.Debug("dropping non-numeric column", zap.String("file", path), zap.String("column", name))
			continue
		}
		keep = append(keep, j)
		run.Columns = append(run.Columns, name)
	}
	run.Rows = make([][]float64, len(parsed))
	for i, row := range parsed {
		run.Rows[i] = make([]float64, len(keep))
		for k, j := range keep {
			run.Rows[i][k] = row[j]
		}
	}
	return run, nil
}

// LoadAll loads every configured run in order and concatenates them.
func LoadAll(condition string, runs []config.Run, logger *zap.Logger) (*Table, []*Run, error) {
	loaded := make([]*Run, 0, len(runs))
	for _, spec := range runs {
		run, err := Load(spec.File, spec.Label, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("loading run %s: %w", spec.File, err)
		}
		logger.Debug("loaded run",
			zap.String("file", spec.File),
			zap.String("label", spec.Label),
			zap.Int("rows", run.Len()))
		loaded = append(loaded, run)
	}
	return Concat(condition, loaded), loaded, nil
}
