// Package monitor polls resource sensors on a fixed interval and
// forwards the readings to sinks.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/sensor"
	"github.com/signalnine/runstats/internal/sink"
)

type Poller struct {
	Sensor   sensor.Sensor
	Sink     sink.Sink
	Interval time.Duration
	// MaxSteps stops the poller after that many recorded samples. Zero
	// means run until the context is cancelled.
	MaxSteps int64
	Out      io.Writer
	Logger   *zap.Logger
	Session  string
}

// NewSession returns a fresh session id for sink file names and tags.
func NewSession() string {
	return uuid.NewString()
}

// Run polls until ctx is cancelled or MaxSteps samples are recorded,
// then closes the sink. It returns the number of recorded steps.
func (p *Poller) Run(ctx context.Context) (steps int64, err error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	defer func() {
		if cerr := p.Sink.Close(); cerr != nil {
			logger.Warn("closing sinks", zap.Error(cerr))
			if err == nil {
				err = cerr
			}
		}
	}()

	if p.Interval <= 0 {
		return 0, fmt.Errorf("poll interval must be positive, got %s", p.Interval)
	}

	logger.Info("polling resource usage",
		zap.String("session", p.Session),
		zap.Duration("interval", p.Interval))

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		if p.poll(ctx, steps, time.Now(), out, logger) {
			steps++
			if p.MaxSteps > 0 && steps >= p.MaxSteps {
				return steps, nil
			}
		}
		select {
		case <-ctx.Done():
			logger.Info("poller stopped", zap.Int64("steps", steps))
			return steps, nil
		case <-ticker.C:
		}
	}
}

// poll takes one sample. Readings that succeeded are recorded even when
// another sensor failed; it reports false only when nothing was read.
func (p *Poller) poll(ctx context.Context, step int64, t time.Time, out io.Writer, logger *zap.Logger) bool {
	vals, err := p.Sensor.Read(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Warn("reading sensors", zap.Int64("step", step), zap.Int("readings", len(vals)), zap.Error(err))
	}
	if len(vals) == 0 || ctx.Err() != nil {
		return false
	}
	for _, v := range vals {
		if err := p.Sink.WriteScalar(ctx, v.Tag, v.Value, step, t); err != nil {
			logger.Warn("writing scalar", zap.String("tag", v.Tag), zap.Int64("step", step), zap.Error(err))
		}
	}
	fmt.Fprintln(out, Line(vals))
	return true
}

// Line formats readings as "CPU: 12.5% | RAM: 43.0% | GPU: 0.0%".
func Line(vals []sensor.Scalar) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%s: %.1f%%", v.Label, v.Value)
	}
	return strings.Join(parts, " | ")
}
