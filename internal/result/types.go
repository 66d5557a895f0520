package result

import (
	"time"

	"github.com/signalnine/runstats/internal/stats"
)

// Summary is everything an analyze run produced, persisted as
// summary.json so that reports can be re-rendered later.
type Summary struct {
	CreatedAt   time.Time            `json:"created_at"`
	Condition   string               `json:"condition"`
	Baseline    string               `json:"baseline"`
	Alpha       float64              `json:"alpha"`
	Runs        []RunInfo            `json:"runs"`
	Metrics     []string             `json:"metrics"`
	Skipped     []string             `json:"skipped,omitempty"`
	Groups      []stats.GroupSummary `json:"groups"`
	Comparisons []stats.Comparison   `json:"comparisons"`
	Files       []string             `json:"files"`
}

type RunInfo struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Rows  int    `json:"rows"`
}
