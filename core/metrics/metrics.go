package metrics

import (
	"errors"
	"io"
	"time"
)

// RunEvent summarizes one build-and-solve run.
type RunEvent struct {
	RunID     string
	Status    string
	Objective float64
	HasValues bool
	// Terms maps each cost term name to its undiscounted value. Nil when the
	// solver returned no values.
	Terms map[string]float64
	// Pathways is the number of pathways with a positive area and Area their
	// total area (ha).
	Pathways int
	Area     float64

	Variables int
	Binaries  int
	Rows      int
	NonZeros  int
	Nodes     int
	Duration  time.Duration
	Time      time.Time
}

// Sink records run summaries for observability purposes. Sinks observe a
// run; their errors never change its outcome.
type Sink interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements Sink with a no-op method.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

// MultiSink fans run events out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if err := Close(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes s when it implements io.Closer.
func Close(s Sink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
