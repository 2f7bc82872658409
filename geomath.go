package shaderoute

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// sphericalLength returns length for given WGS84 line (meters)
func sphericalLength(line orb.LineString) float64 {
	if len(line) < 2 {
		return 0
	}
	return geo.LengthHaversine(line)
}

// findMiddlePoint returns middle point for given planar line (not center point) and index of point in line right before middle one
func findMiddlePoint(line orb.LineString) (int, orb.Point) {
	if len(line) == 0 {
		return 0, orb.Point{}
	}
	halfDistance := planar.Length(line) / 2.0
	if halfDistance == 0 {
		return 0, line[0]
	}
	cl := 0.0
	for i := 1; i < len(line); i++ {
		ol := cl
		tmpDist := planar.Distance(line[i-1], line[i])
		cl += tmpDist
		if halfDistance <= cl && halfDistance > ol {
			return i - 1, pointOnSegmentByFraction(line[i-1], line[i], (halfDistance-ol)/tmpDist)
		}
	}
	return len(line) - 2, line[len(line)-1]
}

// pointOnSegmentByFraction returns a point on given segment
func pointOnSegmentByFraction(p, q orb.Point, fraction float64) orb.Point {
	return orb.Point{
		(1-fraction)*p.X() + fraction*q.X(),
		(1-fraction)*p.Y() + fraction*q.Y(),
	}
}
