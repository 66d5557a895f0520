package monitor_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/signalnine/runstats/internal/monitor"
	"github.com/signalnine/runstats/internal/sensor"
)

type scriptedSensor struct {
	mu    sync.Mutex
	calls int
	// failOn lists 0-based calls that return an error.
	failOn map[int]bool
}

func (s *scriptedSensor) Read(context.Context) ([]sensor.Scalar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.calls
	s.calls++
	if s.failOn[n] {
		return nil, errors.New("sensor unavailable")
	}
	return []sensor.Scalar{
		{Tag: sensor.TagCPU, Label: "CPU", Value: 12.5},
		{Tag: sensor.TagRAM, Label: "RAM", Value: 43},
		{Tag: sensor.TagGPU, Label: "GPU", Value: 0},
	}, nil
}

type write struct {
	tag  string
	step int64
}

type memorySink struct {
	mu     sync.Mutex
	writes []write
	closed bool
}

func (m *memorySink) WriteScalar(_ context.Context, tag string, _ float64, step int64, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, write{tag, step})
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

func TestPollerStopsAfterMaxSteps(t *testing.T) {
	sk := &memorySink{}
	var out bytes.Buffer
	p := &monitor.Poller{
		Sensor:   &scriptedSensor{},
		Sink:     sk,
		Interval: time.Millisecond,
		MaxSteps: 3,
		Out:      &out,
	}
	steps, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if steps != 3 {
		t.Errorf("steps: got %d, want 3", steps)
	}
	if len(sk.writes) != 9 {
		t.Fatalf("expected 9 scalar writes, got %d", len(sk.writes))
	}
	if sk.writes[3].tag != sensor.TagCPU || sk.writes[3].step != 1 {
		t.Errorf("unexpected write %+v", sk.writes[3])
	}
	if !sk.closed {
		t.Error("sink not closed")
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || lines[0] != "CPU: 12.5% | RAM: 43.0% | GPU: 0.0%" {
		t.Errorf("unexpected console output %q", out.String())
	}
}

func TestPollerSkipsFailedSample(t *testing.T) {
	sk := &memorySink{}
	p := &monitor.Poller{
		Sensor:   &scriptedSensor{failOn: map[int]bool{1: true}},
		Sink:     sk,
		Interval: time.Millisecond,
		MaxSteps: 2,
		Out:      &bytes.Buffer{},
	}
	steps, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if steps != 2 {
		t.Errorf("steps: got %d, want 2", steps)
	}
	// The failed read does not consume a step.
	if last := sk.writes[len(sk.writes)-1]; last.step != 1 {
		t.Errorf("last step: got %d, want 1", last.step)
	}
}

func TestPollerClosesSinkOnCancel(t *testing.T) {
	sk := &memorySink{}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	p := &monitor.Poller{
		Sensor:   &scriptedSensor{},
		Sink:     sk,
		Interval: 5 * time.Millisecond,
		Out:      &bytes.Buffer{},
	}
	steps, err := p.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if steps < 1 {
		t.Error("expected at least the immediate first sample")
	}
	if !sk.closed {
		t.Error("sink not closed after cancellation")
	}
}

func TestPollerRejectsZeroInterval(t *testing.T) {
	p := &monitor.Poller{Sensor: &scriptedSensor{}, Sink: &memorySink{}}
	if _, err := p.Run(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestNewSessionUnique(t *testing.T) {
	if monitor.NewSession() == monitor.NewSession() {
		t.Error("sessions should differ")
	}
}

type hostOnly struct{}

func (hostOnly) Read(context.Context) ([]sensor.Scalar, error) {
	return []sensor.Scalar{
		{Tag: sensor.TagCPU, Label: "CPU", Value: 10},
		{Tag: sensor.TagRAM, Label: "RAM", Value: 20},
	}, nil
}

type brokenSensor struct{}

func (brokenSensor) Read(context.Context) ([]sensor.Scalar, error) {
	return nil, errors.New("gpu query failed")
}

func TestPollerRecordsHealthySensors(t *testing.T) {
	sk := &memorySink{}
	var out bytes.Buffer
	p := &monitor.Poller{
		Sensor:   sensor.Multi{hostOnly{}, brokenSensor{}},
		Sink:     sk,
		Interval: time.Millisecond,
		MaxSteps: 2,
		Out:      &out,
	}
	steps, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if steps != 2 {
		t.Errorf("steps: got %d, want 2", steps)
	}
	if len(sk.writes) != 4 {
		t.Fatalf("expected 4 scalar writes, got %d", len(sk.writes))
	}
	if sk.writes[2].tag != sensor.TagCPU || sk.writes[2].step != 1 {
		t.Errorf("unexpected write %+v", sk.writes[2])
	}
	if !strings.HasPrefix(out.String(), "CPU: 10.0% | RAM: 20.0%\n") {
		t.Errorf("unexpected console output %q", out.String())
	}
}
