// Package sensor reads host, GPU and container resource usage as
// percentages.
package sensor

import (
	"context"
	"errors"
)

// Scalar is one named reading. Tag is the name written to sinks and
// Label the short form printed on the console.
type Scalar struct {
	Tag   string
	Label string
	Value float64
}

type Sensor interface {
	Read(ctx context.Context) ([]Scalar, error)
}

// Multi reads every sensor in order. A failing sensor does not stop the
// others: the readings that succeeded are returned together with the
// joined errors.
type Multi []Sensor

func (m Multi) Read(ctx context.Context) ([]Scalar, error) {
	var (
		out  []Scalar
		errs []error
	)
	for _, s := range m {
		vals, err := s.Read(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, vals...)
	}
	return out, errors.Join(errs...)
}
