// Package sink records scalar time series produced by the resource
// poller.
package sink

import (
	"context"
	"errors"
	"time"
)

type Sink interface {
	WriteScalar(ctx context.Context, tag string, value float64, step int64, t time.Time) error
	Close() error
}

// Multi writes to every sink. Errors from individual sinks are joined
// and do not stop the others.
type Multi []Sink

func (m Multi) WriteScalar(ctx context.Context, tag string, value float64, step int64, t time.Time) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteScalar(ctx, tag, value, step, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
