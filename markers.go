package shaderoute

import (
	"github.com/paulmach/orb"
)

// ObstacleMarker is a facility along a route placed at the middle of its link
type ObstacleMarker struct {
	Kind   Facility  `json:"-"`
	Name   string    `json:"kind"`
	LinkID string    `json:"link_id"`
	Point  orb.Point `json:"point"`
}

var markerKinds = []Facility{FACILITY_CROSSWALK, FACILITY_FOOTBRIDGE, FACILITY_TUNNEL, FACILITY_INDOOR}

// ObstacleMarkers returns one marker per facility of every path link
func ObstacleMarkers(net *Network, path Path) []ObstacleMarker {
	markers := []ObstacleMarker{}
	for _, idx := range path.Links {
		link := &net.links[idx]
		var mid orb.Point
		computed := false
		for _, kind := range markerKinds {
			if !link.Has(kind) {
				continue
			}
			if !computed {
				_, mid = findMiddlePoint(link.geom)
				computed = true
			}
			markers = append(markers, ObstacleMarker{
				Kind:   kind,
				Name:   kind.String(),
				LinkID: link.ID,
				Point:  mid,
			})
		}
	}
	return markers
}
