package shaderoute

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func segment(u, v int64, linkID string, length float64, geom ...orb.Point) SegmentRecord {
	return SegmentRecord{
		U:        u,
		V:        v,
		LinkID:   linkID,
		Length:   length,
		Geometry: orb.LineString(geom),
	}
}

// flatShadows returns the same shadow ratio of the link for every hour
func flatShadows(linkID string, ratio float64) []ShadowRecord {
	shadows := make([]ShadowRecord, 0, timeSlotsNum)
	for hour := FirstTimeSlot; hour <= LastTimeSlot; hour++ {
		shadows = append(shadows, ShadowRecord{LinkID: linkID, TimeSlot: hour, ShadowRatio: ratio})
	}
	return shadows
}

// parallelNetwork has two links between nodes 1 and 2:
// 'sunny' is 100m without shade and 'shady' is 120m under full shade
func parallelNetwork(t *testing.T) *Network {
	t.Helper()
	segments := []SegmentRecord{
		segment(1, 2, "sunny", 100, orb.Point{0, 0}, orb.Point{100, 0}),
		segment(1, 2, "shady", 120, orb.Point{0, 0}, orb.Point{0, 10}, orb.Point{100, 10}, orb.Point{100, 0}),
	}
	shadows := append(flatShadows("sunny", 0), flatShadows("shady", 1)...)
	net, err := BuildNetwork(segments, shadows)
	require.NoError(t, err)
	return net
}

// gridNetwork is a 2x3 grid:
//
//	4 --- 5 --- 6
//	|     |     |
//	1 --- 2 --- 3
//
// Bottom row is sunny, upper detour 1-4-5-6-3 is 300m and mostly shaded,
// middle rung 2-5 has a crosswalk.
func gridNetwork(t *testing.T) *Network {
	t.Helper()
	segments := []SegmentRecord{
		segment(1, 2, "1-2", 100, orb.Point{0, 0}, orb.Point{100, 0}),
		segment(2, 3, "2-3", 100, orb.Point{100, 0}, orb.Point{200, 0}),
		segment(1, 4, "1-4", 50, orb.Point{0, 0}, orb.Point{0, 100}),
		segment(4, 5, "4-5", 100, orb.Point{0, 100}, orb.Point{100, 100}),
		segment(5, 6, "5-6", 100, orb.Point{100, 100}, orb.Point{200, 100}),
		segment(6, 3, "6-3", 50, orb.Point{200, 100}, orb.Point{200, 0}),
		segment(2, 5, "2-5", 100, orb.Point{100, 0}, orb.Point{100, 100}),
	}
	segments[6].Crosswalk = true
	shadows := []ShadowRecord{}
	for linkID, ratio := range map[string]float64{"1-2": 0, "2-3": 0, "1-4": 0.8, "4-5": 0.9, "5-6": 0.9, "6-3": 0.8, "2-5": 0.5} {
		shadows = append(shadows, flatShadows(linkID, ratio)...)
	}
	net, err := BuildNetwork(segments, shadows)
	require.NoError(t, err)
	return net
}

func annotated(t *testing.T, base *Network, cond Condition, pref *Preference) *Network {
	t.Helper()
	net := base.Clone()
	require.NoError(t, Annotate(net, cond, pref))
	return net
}

func linkIdx(t *testing.T, net *Network, linkID string) int {
	t.Helper()
	idx, ok := net.linkIdx[linkID]
	require.True(t, ok, "link '%s' must exist", linkID)
	return idx
}

// sliceEnumerator yields prepared paths in order
type sliceEnumerator struct {
	paths []Path
	pos   int
	err   error
}

func (e *sliceEnumerator) Next() bool {
	if e.pos >= len(e.paths) {
		return false
	}
	e.pos++
	return true
}

func (e *sliceEnumerator) Path() Path {
	return e.paths[e.pos-1]
}

func (e *sliceEnumerator) Weight() float64 {
	return 0
}

func (e *sliceEnumerator) Err() error {
	return e.err
}

var hotNoon = Condition{TimeSlot: 12, Temperature: 35, Humidity: 60}
