package sink

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// PointWriter is satisfied by api.WriteAPIBlocking.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type InfluxOpts struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	// Session is attached to every point as a tag.
	Session string
}

// Influx writes each scalar as a point with the scalar tag as an
// InfluxDB tag and value and step as fields.
type Influx struct {
	writer      PointWriter
	measurement string
	session     string
	close       func()
}

func NewInflux(opts InfluxOpts) *Influx {
	client := influxdb2.NewClient(opts.URL, opts.Token)
	in := NewInfluxWriter(client.WriteAPIBlocking(opts.Org, opts.Bucket), opts.Measurement, opts.Session)
	in.close = client.Close
	return in
}

// NewInfluxWriter wraps an existing writer. Close does not release it.
func NewInfluxWriter(w PointWriter, measurement, session string) *Influx {
	if measurement == "" {
		measurement = "resource_usage"
	}
	return &Influx{writer: w, measurement: measurement, session: session}
}

func (in *Influx) WriteScalar(ctx context.Context, tag string, value float64, step int64, t time.Time) error {
	tags := map[string]string{"tag": tag}
	if in.session != "" {
		tags["session"] = in.session
	}
	p := influxdb2.NewPoint(in.measurement, tags, map[string]interface{}{
		"value": value,
		"step":  step,
	}, t)
	if err := in.writer.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("writing %s to influxdb: %w", tag, err)
	}
	return nil
}

func (in *Influx) Close() error {
	if in.close != nil {
		in.close()
	}
	return nil
}
