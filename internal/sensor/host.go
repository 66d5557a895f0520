package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	TagCPU = "CPU Usage"
	TagRAM = "RAM Usage"
)

// Host reports system-wide CPU and memory utilisation.
type Host struct {
	// CPUWindow is how long CPU usage is measured over. Zero compares
	// against the previous call.
	CPUWindow time.Duration
}

func (h Host) Read(ctx context.Context) ([]Scalar, error) {
	pct, err := cpu.PercentWithContext(ctx, h.CPUWindow, false)
	if err != nil {
		return nil, fmt.Errorf("reading cpu usage: %w", err)
	}
	if len(pct) == 0 {
		return nil, fmt.Errorf("reading cpu usage: no data")
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading memory usage: %w", err)
	}
	return []Scalar{
		{Tag: TagCPU, Label: "CPU", Value: pct[0]},
		{Tag: TagRAM, Label: "RAM", Value: vm.UsedPercent},
	}, nil
}
