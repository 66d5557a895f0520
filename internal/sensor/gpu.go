package sensor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const TagGPU = "GPU Usage"

// CommandFunc runs an external program and returns its stdout.
type CommandFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// GPU reports the load of the first device listed by nvidia-smi. A
// machine without the tool, a working driver or any device reads as 0,
// as does a device that reports its load as "[N/A]".
type GPU struct {
	Command string
	Run     CommandFunc
	Logger  *zap.Logger
}

func NewGPU(command string, logger *zap.Logger) *GPU {
	if command == "" {
		command = "nvidia-smi"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GPU{Command: command, Run: execCommand, Logger: logger}
}

func (g *GPU) Read(ctx context.Context) ([]Scalar, error) {
	load, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return []Scalar{{Tag: TagGPU, Label: "GPU", Value: load}}, nil
}

func (g *GPU) load(ctx context.Context) (float64, error) {
	out, err := g.Run(ctx, g.Command, "--query-gpu=utilization.gpu", "--format=csv,noheader,nounits")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.Is(err, exec.ErrNotFound) || errors.As(err, &exitErr) {
			g.Logger.Debug("no gpu available", zap.String("command", g.Command), zap.Error(err))
			return 0, nil
		}
		return 0, fmt.Errorf("querying gpu: %w", err)
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(first, 64)
	if err != nil {
		g.Logger.Debug("gpu load not available", zap.String("output", first), zap.Error(err))
		return 0, nil
	}
	return v, nil
}
