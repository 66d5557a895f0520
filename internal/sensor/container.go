package sensor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
)

const (
	TagContainerCPU    = "Container CPU Usage"
	TagContainerMemory = "Container Memory Usage"
)

// StatsClient is the part of the Docker client a Container needs.
type StatsClient interface {
	ContainerStats(ctx context.Context, containerID string, options client.ContainerStatsOptions) (client.ContainerStatsResult, error)
}

// Container reports CPU and memory usage of one Docker container, as
// docker stats computes them.
type Container struct {
	ID     string
	Client StatsClient
}

// NewContainer connects to the daemon named by the DOCKER_* environment.
// The returned close function releases the client.
func NewContainer(id string) (*Container, func() error, error) {
	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, nil, fmt.Errorf("creating docker client: %w", err)
	}
	return &Container{ID: id, Client: cli}, cli.Close, nil
}

func (c *Container) Read(ctx context.Context) ([]Scalar, error) {
	res, err := c.Client.ContainerStats(ctx, c.ID, client.ContainerStatsOptions{
		Stream:                false,
		IncludePreviousSample: true,
	})
	if err != nil {
		return nil, fmt.Errorf("container stats %s: %w", c.ID, err)
	}
	defer res.Body.Close()

	var st container.StatsResponse
	if err := json.NewDecoder(res.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding container stats %s: %w", c.ID, err)
	}
	return []Scalar{
		{Tag: TagContainerCPU, Label: "Container CPU", Value: cpuPercent(&st)},
		{Tag: TagContainerMemory, Label: "Container Mem", Value: memPercent(&st)},
	}, nil
}

func cpuPercent(st *container.StatsResponse) float64 {
	cpuDelta := float64(st.CPUStats.CPUUsage.TotalUsage) - float64(st.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(st.CPUStats.SystemUsage) - float64(st.PreCPUStats.SystemUsage)
	if cpuDelta <= 0 || sysDelta <= 0 {
		return 0
	}
	online := float64(st.CPUStats.OnlineCPUs)
	if online == 0 {
		online = float64(len(st.CPUStats.CPUUsage.PercpuUsage))
	}
	return cpuDelta / sysDelta * online * 100
}

// memPercent excludes page cache: inactive_file on cgroup v2,
// total_inactive_file on v1.
func memPercent(st *container.StatsResponse) float64 {
	if st.MemoryStats.Limit == 0 {
		return 0
	}
	used := st.MemoryStats.Usage
	for _, key := range []string{"inactive_file", "total_inactive_file"} {
		if v, ok := st.MemoryStats.Stats[key]; ok && v < used {
			used -= v
			break
		}
	}
	return float64(used) / float64(st.MemoryStats.Limit) * 100
}
