package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event is one line of a scalar log.
type Event struct {
	Tag      string  `json:"tag"`
	Value    float64 `json:"value"`
	Step     int64   `json:"step"`
	WallTime float64 `json:"wall_time"`
}

// JSONL appends scalar events, one JSON object per line, to
// <dir>/scalars-<session>.jsonl.
type JSONL struct {
	path string
	f    *os.File
	enc  *json.Encoder
}

func NewJSONL(dir, session string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	path := filepath.Join(dir, "scalars-"+session+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening scalar log: %w", err)
	}
	return &JSONL{path: path, f: f, enc: json.NewEncoder(f)}, nil
}

func (j *JSONL) Path() string { return j.path }

func (j *JSONL) WriteScalar(_ context.Context, tag string, value float64, step int64, t time.Time) error {
	ev := Event{Tag: tag, Value: value, Step: step, WallTime: float64(t.UnixNano()) / 1e9}
	if err := j.enc.Encode(ev); err != nil {
		return fmt.Errorf("writing %s: %w", j.path, err)
	}
	return nil
}

func (j *JSONL) Close() error {
	return j.f.Close()
}
