package shaderoute

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned for malformed datasets, out-of-range request values and unknown endpoints
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoRouteFound is returned when endpoints lie in different connected components
	ErrNoRouteFound = errors.New("no route found")
	// ErrDegenerateMetric is returned when a reference path has zero length or zero walking time
	ErrDegenerateMetric = errors.New("degenerate metric")
)

func invalidInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
