package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const SummaryFile = "summary.json"

// CreateRunDir makes <baseDir>/runs/<UTC timestamp> and points
// <baseDir>/latest at it. A second run within the same second gets a
// "-2", "-3", ... suffix rather than reusing the directory.
func CreateRunDir(baseDir string) (string, error) {
	runsDir, err := filepath.Abs(filepath.Join(baseDir, "runs"))
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	for n := 2; ; n++ {
		err := os.Mkdir(runDir, 0o755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating run dir: %w", err)
		}
		runDir = filepath.Join(runsDir, fmt.Sprintf("%s-%d", stamp, n))
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// ResolveRunDir returns arg if given, else <baseDir>/latest, with
// symlinks evaluated.
func ResolveRunDir(baseDir, arg string) (string, error) {
	runDir := filepath.Join(baseDir, "latest")
	if arg != "" {
		runDir = arg
	}
	resolved, err := filepath.EvalSymlinks(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	return resolved, nil
}

func WriteSummary(runDir string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, SummaryFile), data, 0o644)
}

func ReadSummary(runDir string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(runDir, SummaryFile))
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &s, nil
}
