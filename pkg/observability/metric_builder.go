package observability

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instrumentSet creates the instruments of one metrics group and collects
// every creation failure, so callers check a single error at the end.
type instrumentSet struct {
	meter metric.Meter
	errs  []error
}

func newInstrumentSet(mt metric.Meter) *instrumentSet {
	return &instrumentSet{meter: mt}
}

func (s *instrumentSet) counter(name, desc, unit string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.check(name, err)

	return c
}

// seconds creates a duration histogram sharing durationBucketBoundaries.
func (s *instrumentSet) seconds(name, desc string) metric.Float64Histogram {
	h, err := s.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	s.check(name, err)

	return h
}

func (s *instrumentSet) inflight(name, desc, unit string) metric.Int64UpDownCounter {
	c, err := s.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	s.check(name, err)

	return c
}

// timestamp creates an observable gauge reporting unix seconds.
func (s *instrumentSet) timestamp(name, desc string) metric.Int64ObservableGauge {
	g, err := s.meter.Int64ObservableGauge(name, metric.WithDescription(desc), metric.WithUnit("s"))
	s.check(name, err)

	return g
}

func (s *instrumentSet) check(name string, err error) {
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("create %s: %w", name, err))
	}
}

func (s *instrumentSet) err() error {
	return errors.Join(s.errs...)
}
