package shaderoute

import (
	"math"

	"github.com/paulmach/orb"
)

/* Links stuff */

const (
	// FirstTimeSlot is the earliest hour covered by shadow data
	FirstTimeSlot = 8
	// LastTimeSlot is the latest hour covered by shadow data
	LastTimeSlot = 19

	timeSlotsNum = LastTimeSlot - FirstTimeSlot + 1
)

// NetworkLink is an undirected walkable segment between two nodes.
//
// Static attributes (geometry, length, facilities, shadowByHour) are set once by BuildNetwork.
// shadowRatio and costs are request-scoped and only written by Annotate on a cloned network.
type NetworkLink struct {
	ID           string
	geom         orb.LineString
	lengthMeters float64
	sourceNodeID NodeID
	targetNodeID NodeID

	tunnel     bool
	indoor     bool
	footbridge bool
	crosswalk  bool

	shadowByHour [timeSlotsNum]float64

	shadowRatio float64
	costs       Costs
}

func networkLinkFromSegment(seg *SegmentRecord, shadows map[int]map[string]float64) (NetworkLink, error) {
	if seg.LinkID == "" {
		return NetworkLink{}, invalidInputf("empty link_id for segment %d-%d", seg.U, seg.V)
	}
	if math.IsNaN(seg.Length) || math.IsInf(seg.Length, 0) || seg.Length <= 0 {
		return NetworkLink{}, invalidInputf("link '%s' has non-positive length %f", seg.LinkID, seg.Length)
	}
	if len(seg.Geometry) < 2 {
		return NetworkLink{}, invalidInputf("link '%s' has geometry with %d points", seg.LinkID, len(seg.Geometry))
	}
	link := NetworkLink{
		ID:           seg.LinkID,
		geom:         seg.Geometry.Clone(),
		lengthMeters: seg.Length,
		sourceNodeID: NodeID(seg.U),
		targetNodeID: NodeID(seg.V),
		tunnel:       seg.Tunnel,
		indoor:       seg.Indoor,
		footbridge:   seg.Footbridge,
		crosswalk:    seg.Crosswalk,
	}
	for hour := FirstTimeSlot; hour <= LastTimeSlot; hour++ {
		// Enclosed segments block the sun regardless of what the shadow dataset says
		if link.indoor || link.tunnel {
			link.shadowByHour[hour-FirstTimeSlot] = 1.0
			continue
		}
		link.shadowByHour[hour-FirstTimeSlot] = shadows[hour][link.ID]
	}
	return link, nil
}

// Length returns link length in meters
func (link *NetworkLink) Length() float64 {
	return link.lengthMeters
}

// Geom returns planar geometry of the link. Callers must not modify it
func (link *NetworkLink) Geom() orb.LineString {
	return link.geom
}

// Source returns first node of the link
func (link *NetworkLink) Source() NodeID {
	return link.sourceNodeID
}

// Target returns last node of the link
func (link *NetworkLink) Target() NodeID {
	return link.targetNodeID
}

// Opposite returns node on the other end of the link
func (link *NetworkLink) Opposite(node NodeID) NodeID {
	if link.sourceNodeID == node {
		return link.targetNodeID
	}
	return link.sourceNodeID
}

// Connects reports whether link joins nodes a and b in any direction
func (link *NetworkLink) Connects(a, b NodeID) bool {
	return (link.sourceNodeID == a && link.targetNodeID == b) || (link.sourceNodeID == b && link.targetNodeID == a)
}

// Has reports whether link carries the facility
func (link *NetworkLink) Has(f Facility) bool {
	switch f {
	case FACILITY_CROSSWALK:
		return link.crosswalk
	case FACILITY_FOOTBRIDGE:
		return link.footbridge
	case FACILITY_TUNNEL:
		return link.tunnel
	case FACILITY_INDOOR:
		return link.indoor
	default:
		return false
	}
}

// ShadowAt returns static shadow ratio of the link for the hour
func (link *NetworkLink) ShadowAt(timeSlot int) (float64, error) {
	if timeSlot < FirstTimeSlot || timeSlot > LastTimeSlot {
		return 0, invalidInputf("time slot %d is out of [%d, %d]", timeSlot, FirstTimeSlot, LastTimeSlot)
	}
	return link.shadowByHour[timeSlot-FirstTimeSlot], nil
}

// ShadowRatio returns shadow ratio selected for the active request
func (link *NetworkLink) ShadowRatio() float64 {
	return link.shadowRatio
}

// Cost returns request-scoped cost of the link for the profile
func (link *NetworkLink) Cost(p Profile) float64 {
	return link.costs.Get(p)
}

// IndoorType returns indoor classification of the link
func (link *NetworkLink) IndoorType() IndoorType {
	return classifyIndoor(link)
}
