package shaderoute

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultMaxCandidates bounds number of paths examined by constrained search
	DefaultMaxCandidates = 30
)

// ConstrainedResult is the outcome of detour-constrained search
type ConstrainedResult struct {
	Path   Path
	Cost   float64
	Length float64
	// Candidates is number of enumerated paths
	Candidates int
	// Fallback is set when no candidate fits detour budget and base path is returned
	Fallback bool
}

// FindConstrainedBestPath picks path with the lowest personal cost among the first maxCandidates
// paths of enumerator whose length doesn't exceed length(base)*(1+detourLimit).
//
// Enumerator is expected to yield paths ordered by length. Paths longer than the budget are skipped, not
// treated as a stop signal. When nothing fits, base path is returned with Fallback set.
func FindConstrainedBestPath(net *Network, base Path, enumerator RankedPathEnumerator, detourLimit float64, maxCandidates int) (ConstrainedResult, error) {
	if base.Empty() {
		return ConstrainedResult{}, invalidInputf("empty base path")
	}
	if math.IsNaN(detourLimit) || detourLimit < 0 || detourLimit > 1 {
		return ConstrainedResult{}, invalidInputf("detour limit %f is out of [0, 1]", detourLimit)
	}
	if !net.personal {
		return ConstrainedResult{}, errors.Wrap(ErrInvalidInput, "network has no personal costs")
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	baseLength := net.PathLength(base)
	maxLength := baseLength * (1 + detourLimit)

	best := ConstrainedResult{Cost: math.Inf(1)}
	found := false
	for best.Candidates < maxCandidates && enumerator.Next() {
		best.Candidates++
		candidate := enumerator.Path()
		length := net.PathLength(candidate)
		if length > maxLength {
			continue
		}
		cost := net.PathCost(candidate, PROFILE_PERSONAL)
		if cost < best.Cost {
			best.Path = candidate
			best.Cost = cost
			best.Length = length
			found = true
		}
	}
	if err := enumerator.Err(); err != nil {
		return ConstrainedResult{}, errors.Wrap(err, "Can't enumerate candidates")
	}
	if !found {
		best.Path = base
		best.Cost = net.PathCost(base, PROFILE_PERSONAL)
		best.Length = baseLength
		best.Fallback = true
	}
	return best, nil
}
