package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "runstats.yaml"

type Config struct {
	Condition string   `yaml:"condition"`
	Runs      []Run    `yaml:"runs"`
	Metrics   []string `yaml:"metrics"`
	Exclude   []string `yaml:"exclude"`
	Baseline  string   `yaml:"baseline"`
	Alpha     float64  `yaml:"alpha"`
	Output    Output   `yaml:"output"`
	Monitor   Monitor  `yaml:"monitor"`
	Secrets   Secrets  `yaml:"secrets"`
}

// Run pairs one CSV log with the condition label its rows belong to.
type Run struct {
	File  string `yaml:"file"`
	Label string `yaml:"label"`
}

type Output struct {
	Dir     string  `yaml:"dir"`
	Plots   *bool   `yaml:"plots"`
	Workers int     `yaml:"workers"`
	WidthIn float64 `yaml:"width_in"`
	DPI     int     `yaml:"dpi"`
}

// PlotsEnabled reports whether plots should be rendered. Plots are on
// unless explicitly disabled.
func (o Output) PlotsEnabled() bool {
	return o.Plots == nil || *o.Plots
}

type Monitor struct {
	Interval   time.Duration `yaml:"interval"`
	LogDir     string        `yaml:"log_dir"`
	GPUCommand string        `yaml:"gpu_command"`
	Container  string        `yaml:"container"`
	Influx     Influx        `yaml:"influx"`
	Prometheus Prometheus    `yaml:"prometheus"`
}

type Influx struct {
	URL         string `yaml:"url"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	TokenEnv    string `yaml:"token_env"`
	Measurement string `yaml:"measurement"`
}

func (i Influx) Enabled() bool { return i.URL != "" }

type Prometheus struct {
	Addr string `yaml:"addr"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

// Default describes the learning-rate experiment: three runs at
// 0.001 and three at 0.0001, logged with the Soccer StatsLogger columns.
func Default() *Config {
	cfg := &Config{
		Runs: []Run{
			{File: "LucaRun1.csv", Label: "0.001"},
			{File: "LucaRun2.csv", Label: "0.001"},
			{File: "LucaRun3.csv", Label: "0.001"},
			{File: "LucaRun4.csv", Label: "0.0001"},
			{File: "LucaRun5.csv", Label: "0.0001"},
			{File: "LucaRun6.csv", Label: "0.0001"},
		},
		Metrics: []string{
			"Physics Time (ms)",
			"Main Thread Time (ms)",
			"System Memory (MB)",
			"Wall Time (ms)",
		},
		Exclude: []string{"Blue Cumulative Reward"},
	}
	// Defaults are static and always valid.
	_ = validate(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when path is the
// implicit DefaultPath and no such file exists.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && path == DefaultPath && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func validate(cfg *Config) error {
	if len(cfg.Runs) == 0 {
		return fmt.Errorf("no runs defined")
	}
	for i, r := range cfg.Runs {
		if r.File == "" {
			return fmt.Errorf("run %d: file is required", i)
		}
		if r.Label == "" {
			return fmt.Errorf("run %q: label is required", r.File)
		}
	}
	if cfg.Condition == "" {
		cfg.Condition = "Learning Rate"
	}
	if cfg.Baseline == "" {
		cfg.Baseline = cfg.Runs[0].Label
	} else if !hasLabel(cfg.Runs, cfg.Baseline) {
		return fmt.Errorf("baseline %q does not match any run label", cfg.Baseline)
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 0.05
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return fmt.Errorf("alpha must be between 0 and 1, got %g", cfg.Alpha)
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "results"
	}
	if cfg.Output.Workers == 0 {
		cfg.Output.Workers = 4
	}
	if cfg.Output.Workers < 1 {
		return fmt.Errorf("output.workers must be at least 1")
	}
	if cfg.Output.WidthIn == 0 {
		cfg.Output.WidthIn = 10
	}
	if cfg.Output.DPI == 0 {
		cfg.Output.DPI = 96
	}

	m := &cfg.Monitor
	if m.Interval == 0 {
		m.Interval = 5 * time.Second
	}
	if m.Interval < 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if m.LogDir == "" {
		m.LogDir = "runs/resource_usage"
	}
	if m.GPUCommand == "" {
		m.GPUCommand = "nvidia-smi"
	}
	if m.Influx.Enabled() {
		if m.Influx.Org == "" || m.Influx.Bucket == "" {
			return fmt.Errorf("monitor.influx: org and bucket are required when url is set")
		}
		if m.Influx.TokenEnv == "" {
			m.Influx.TokenEnv = "INFLUX_TOKEN"
		}
		if m.Influx.Measurement == "" {
			m.Influx.Measurement = "resource_usage"
		}
	}
	return nil
}

// Labels returns the distinct run labels in config order.
func (c *Config) Labels() []string {
	var labels []string
	seen := map[string]bool{}
	for _, r := range c.Runs {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}
	return labels
}

func hasLabel(runs []Run, label string) bool {
	for _, r := range runs {
		if r.Label == label {
			return true
		}
	}
	return false
}
