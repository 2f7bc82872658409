package shaderoute

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// lineToMercator returns copy of WGS84 line projected to Web Mercator (EPSG:3857)
func lineToMercator(line orb.LineString) orb.LineString {
	return project.LineString(line.Clone(), project.WGS84.ToMercator)
}

// lineToWGS84 returns copy of Web Mercator line unprojected to WGS84 (EPSG:4326)
func lineToWGS84(line orb.LineString) orb.LineString {
	return project.LineString(line.Clone(), project.Mercator.ToWGS84)
}

// pointToWGS84 unprojects Web Mercator point to WGS84
func pointToWGS84(pt orb.Point) orb.Point {
	return project.Mercator.ToWGS84(pt)
}
