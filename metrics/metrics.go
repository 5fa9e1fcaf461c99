// Package metrics exports segment parsing outcomes as Prometheus metrics.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	fints "github.com/reoring/fints"
)

// Result labels.
const (
	ResultOK         = "ok"
	ResultMissing    = "missing"
	ResultInvalid    = "invalid"
	ResultParseError = "parse_error"
	ResultError      = "error"
)

// Collector holds the segment metrics. It implements fints.Observer.
type Collector struct {
	SegmentsParsed *prometheus.CounterVec
	Fallbacks      *prometheus.CounterVec
}

// New creates a collector registered with the default registerer.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		SegmentsParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fints",
				Name:      "segments_parsed_total",
				Help:      "Total number of segments parsed, by type, version and result",
			},
			[]string{"type", "version", "result"},
		),
		Fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fints",
				Name:      "fallbacks_total",
				Help:      "Total number of segments parsed with the generic schema",
			},
			[]string{"type", "version"},
		),
	}
}

// SegmentParsed records one ParseSegment outcome.
func (c *Collector) SegmentParsed(k fints.Key, generic bool, err error) {
	version := strconv.Itoa(k.Version)
	c.SegmentsParsed.WithLabelValues(k.Type, version, Result(err)).Inc()
	if generic && err == nil {
		c.Fallbacks.WithLabelValues(k.Type, version).Inc()
	}
}

// Result maps a parse error to its result label.
func Result(err error) string {
	var (
		missing *fints.MissingFieldError
		invalid *fints.ValidationError
		parse   *fints.ParseError
	)
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &missing):
		return ResultMissing
	case errors.As(err, &invalid):
		return ResultInvalid
	case errors.As(err, &parse):
		return ResultParseError
	}
	return ResultError
}
