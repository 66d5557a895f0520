package sensor_test

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/moby/moby/client"

	"github.com/signalnine/runstats/internal/sensor"
)

func fakeRun(out string, err error) sensor.CommandFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte(out), err
	}
}

func TestGPULoad(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		err     error
		want    float64
		wantErr bool
	}{
		{"first device", "37\n12\n", nil, 37, false},
		{"padded", "  5 \n", nil, 5, false},
		{"no devices", "", nil, 0, false},
		{"tool missing", "", exec.ErrNotFound, 0, false},
		{"driver failure", "", &exec.ExitError{}, 0, false},
		{"load not supported", "[N/A]\n", nil, 0, false},
		{"garbage", "n/a, busy\n", nil, 0, false},
		{"other error", "", errors.New("boom"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sensor.NewGPU("", nil)
			g.Run = fakeRun(tt.out, tt.err)
			vals, err := g.Read(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(vals) != 1 || vals[0].Tag != sensor.TagGPU {
				t.Fatalf("unexpected readings %v", vals)
			}
			if vals[0].Value != tt.want {
				t.Errorf("got %v, want %v", vals[0].Value, tt.want)
			}
		})
	}
}

func TestGPUQueryArgs(t *testing.T) {
	var got []string
	g := sensor.NewGPU("my-smi", nil)
	g.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		got = append([]string{name}, args...)
		return []byte("1"), nil
	}
	if _, err := g.Read(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "my-smi --query-gpu=utilization.gpu --format=csv,noheader,nounits"
	if strings.Join(got, " ") != want {
		t.Errorf("got %q, want %q", strings.Join(got, " "), want)
	}
}

type fakeStats struct {
	body string
	err  error
}

func (f fakeStats) ContainerStats(ctx context.Context, id string, opts client.ContainerStatsOptions) (client.ContainerStatsResult, error) {
	if f.err != nil {
		return client.ContainerStatsResult{}, f.err
	}
	return client.ContainerStatsResult{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestContainerRead(t *testing.T) {
	body := `{
		"cpu_stats": {"cpu_usage": {"total_usage": 3000}, "system_cpu_usage": 20000, "online_cpus": 4},
		"precpu_stats": {"cpu_usage": {"total_usage": 1000}, "system_cpu_usage": 10000},
		"memory_stats": {"usage": 600, "limit": 1000, "stats": {"inactive_file": 100}}
	}`
	c := &sensor.Container{ID: "abc", Client: fakeStats{body: body}}
	vals, err := c.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(vals))
	}
	// 2000 / 10000 * 4 cpus
	if vals[0].Tag != sensor.TagContainerCPU || vals[0].Value != 80 {
		t.Errorf("cpu: got %+v", vals[0])
	}
	if vals[1].Tag != sensor.TagContainerMemory || vals[1].Value != 50 {
		t.Errorf("memory: got %+v", vals[1])
	}
}

func TestContainerReadError(t *testing.T) {
	c := &sensor.Container{ID: "abc", Client: fakeStats{err: errors.New("no such container")}}
	if _, err := c.Read(context.Background()); err == nil || !strings.Contains(err.Error(), "abc") {
		t.Errorf("expected error naming the container, got %v", err)
	}
}

type staticSensor []sensor.Scalar

func (s staticSensor) Read(context.Context) ([]sensor.Scalar, error) { return s, nil }

type failingSensor struct{}

func (failingSensor) Read(context.Context) ([]sensor.Scalar, error) {
	return nil, errors.New("unavailable")
}

func TestMulti(t *testing.T) {
	m := sensor.Multi{
		staticSensor{{Tag: "a", Value: 1}},
		staticSensor{{Tag: "b", Value: 2}, {Tag: "c", Value: 3}},
	}
	vals, err := m.Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 3 || vals[2].Tag != "c" {
		t.Errorf("unexpected readings %v", vals)
	}

	vals, err = sensor.Multi{m[0], failingSensor{}, m[1]}.Read(context.Background())
	if err == nil {
		t.Error("expected error from failing sensor")
	}
	if len(vals) != 3 {
		t.Errorf("healthy sensors should still be read, got %v", vals)
	}
}

func TestHostRead(t *testing.T) {
	vals, err := sensor.Host{CPUWindow: 50 * time.Millisecond}.Read(context.Background())
	if err != nil {
		t.Skipf("host counters unavailable: %v", err)
	}
	if len(vals) != 2 || vals[0].Tag != sensor.TagCPU || vals[1].Tag != sensor.TagRAM {
		t.Fatalf("unexpected readings %v", vals)
	}
	for _, v := range vals {
		if v.Value < 0 || v.Value > 100 {
			t.Errorf("%s out of range: %v", v.Tag, v.Value)
		}
	}
}

func TestContainerDocker(t *testing.T) {
	if os.Getenv("RUNSTATS_DOCKER_TESTS") == "" {
		t.Skip("set RUNSTATS_DOCKER_TESTS=1 to run Docker tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli, err := client.New(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Fatal(err)
	}
	defer cli.Close()
	list, err := cli.ContainerList(ctx, client.ContainerListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list.Items) == 0 {
		t.Skip("no running containers")
	}

	c, closeFn, err := sensor.NewContainer(list.Items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, err := c.Read(ctx); err != nil {
		t.Fatalf("Read: %v", err)
	}
}
