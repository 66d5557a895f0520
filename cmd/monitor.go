package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/signalnine/runstats/internal/config"
	"github.com/signalnine/runstats/internal/monitor"
	"github.com/signalnine/runstats/internal/sensor"
	"github.com/signalnine/runstats/internal/sink"
)

var (
	flagInterval  time.Duration
	flagLogDir    string
	flagDuration  time.Duration
	flagSteps     int64
	flagContainer string
)

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Poll CPU, RAM and GPU usage and log it",
		Long:  "Sample host CPU, memory and GPU load on a fixed interval, print each sample and write it to the scalar log, InfluxDB and a Prometheus endpoint as configured. Stops on SIGINT/SIGTERM or when --duration or --steps is reached.",
		RunE:  runMonitor,
	}
	cmd.Flags().DurationVar(&flagInterval, "interval", 0, "override the sampling interval")
	cmd.Flags().StringVar(&flagLogDir, "log-dir", "", "override the scalar log directory")
	cmd.Flags().DurationVar(&flagDuration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().Int64Var(&flagSteps, "steps", 0, "stop after this many samples (0 runs until interrupted)")
	cmd.Flags().StringVar(&flagContainer, "container", "", "also sample this Docker container")
	return cmd
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m := cfg.Monitor
	if flagInterval > 0 {
		m.Interval = flagInterval
	}
	if flagLogDir != "" {
		m.LogDir = flagLogDir
	}
	if flagContainer != "" {
		m.Container = flagContainer
	}
	if cfg.Secrets.EnvFile != "" {
		set, err := config.ApplyEnvFile(cfg.Secrets.EnvFile)
		if err != nil {
			logger.Warn("could not load secrets", zap.Error(err))
		} else {
			logger.Debug("loaded secrets", zap.Strings("vars", set))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flagDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagDuration)
		defer cancel()
	}

	sensors := sensor.Multi{
		sensor.Host{CPUWindow: min(time.Second, m.Interval/2)},
		sensor.NewGPU(m.GPUCommand, logger),
	}
	if m.Container != "" {
		c, closeClient, err := sensor.NewContainer(m.Container)
		if err != nil {
			return err
		}
		defer closeClient()
		sensors = append(sensors, c)
	}

	session := monitor.NewSession()
	sinks, prom, err := buildSinks(m, session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if prom != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler())
		srv := &http.Server{Addr: m.Prometheus.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		// The server goroutines only exit once the poller is done.
		defer cancel()
		p := &monitor.Poller{
			Sensor:   sensors,
			Sink:     sinks,
			Interval: m.Interval,
			MaxSteps: flagSteps,
			Out:      os.Stdout,
			Logger:   logger,
			Session:  session,
		}
		steps, err := p.Run(gctx)
		logger.Info("monitor finished", zap.Int64("steps", steps))
		return err
	})
	return g.Wait()
}

// buildSinks always includes the JSONL scalar log and adds InfluxDB and
// Prometheus when configured. The Prometheus sink is also returned so
// its handler can be served.
func buildSinks(m config.Monitor, session string) (sink.Multi, *sink.Prometheus, error) {
	jl, err := sink.NewJSONL(m.LogDir, session)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("logging scalars", zap.String("path", jl.Path()))
	sinks := sink.Multi{jl}

	if m.Influx.Enabled() {
		token := os.Getenv(m.Influx.TokenEnv)
		if token == "" {
			logger.Warn("influx token not set", zap.String("env", m.Influx.TokenEnv))
		}
		sinks = append(sinks, sink.NewInflux(sink.InfluxOpts{
			URL:         m.Influx.URL,
			Token:       token,
			Org:         m.Influx.Org,
			Bucket:      m.Influx.Bucket,
			Measurement: m.Influx.Measurement,
			Session:     session,
		}))
		logger.Info("writing to influxdb", zap.String("url", m.Influx.URL), zap.String("bucket", m.Influx.Bucket))
	}

	var prom *sink.Prometheus
	if m.Prometheus.Addr != "" {
		prom = sink.NewPrometheus()
		sinks = append(sinks, prom)
	}
	return sinks, prom, nil
}
