package dataset

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

// Table is the concatenation of several runs with the condition label
// carried as an extra column. Row order follows the input runs.
type Table struct {
	Condition string
	Columns   []string
	// Per-row condition label, source run index and row index within
	// the source run.
	Labels  []string
	Sources []int
	Index   []int

	data map[string][]float64
}

// Concat appends runs in order. The column set is the union of all
// runs' columns in first-seen order; a run lacking a column contributes
// NaN for it.
func Concat(condition string, runs []*Run) *Table {
	t := &Table{Condition: condition, data: map[string][]float64{}}
	total := 0
	for _, r := range runs {
		total += r.Len()
		for _, c := range r.Columns {
			if !slices.Contains(t.Columns, c) {
				t.Columns = append(t.Columns, c)
			}
		}
	}
	for _, c := range t.Columns {
		t.data[c] = make([]float64, 0, total)
	}
	for src, r := range runs {
		for i, row := range r.Rows {
			t.Labels = append(t.Labels, r.Label)
			t.Sources = append(t.Sources, src)
			t.Index = append(t.Index, i)
			for _, c := range t.Columns {
				v := math.NaN()
				if j := lo.IndexOf(r.Columns, c); j >= 0 {
					v = row[j]
				}
				t.data[c] = append(t.data[c], v)
			}
		}
	}
	return t
}

func (t *Table) Len() int { return len(t.Labels) }

func (t *Table) Has(col string) bool {
	_, ok := t.data[col]
	return ok
}

// Column returns the full column, NaNs included. The slice is shared
// with the table and must not be modified.
func (t *Table) Column(col string) []float64 {
	return t.data[col]
}

// GroupLabels returns the distinct condition labels in first-seen order.
func (t *Table) GroupLabels() []string {
	return lo.Uniq(t.Labels)
}

// Group returns the non-NaN values of col for rows carrying label.
func (t *Table) Group(label, col string) []float64 {
	vals, ok := t.data[col]
	if !ok {
		return nil
	}
	var out []float64
	for i, l := range t.Labels {
		if l == label && !math.IsNaN(vals[i]) {
			out = append(out, vals[i])
		}
	}
	return out
}

// GroupSources returns the indices of the source runs carrying label.
func (t *Table) GroupSources(label string) []int {
	var out []int
	for i, l := range t.Labels {
		if l == label && !slices.Contains(out, t.Sources[i]) {
			out = append(out, t.Sources[i])
		}
	}
	return out
}

// Series returns col for a single source run, indexed by the row's
// position within that run.
func (t *Table) Series(source int, col string) (index, values []float64) {
	vals := t.data[col]
	for i, s := range t.Sources {
		if s == source {
			index = append(index, float64(t.Index[i]))
			values = append(values, vals[i])
		}
	}
	return index, values
}

// Drop removes the named columns if present.
func (t *Table) Drop(cols ...string) {
	for _, c := range cols {
		delete(t.data, c)
	}
	t.Columns = lo.Without(t.Columns, cols...)
}

// Present splits wanted into the columns the table has and those it
// lacks, preserving order.
func (t *Table) Present(wanted []string) (present, missing []string) {
	for _, c := range wanted {
		if t.Has(c) {
			present = append(present, c)
		} else {
			missing = append(missing, c)
		}
	}
	return present, missing
}
