package shaderoute

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNetwork(t *testing.T) {
	net := gridNetwork(t)
	assert.True(t, net.Frozen())
	assert.False(t, net.Annotated())
	assert.Equal(t, 6, net.NodesNum())
	assert.Equal(t, 7, net.LinksNum())
	assert.Equal(t, []NodeID{1, 2, 3, 4, 5, 6}, net.NodeIDs())

	node, ok := net.Node(2)
	require.True(t, ok)
	assert.Equal(t, orb.Point{100, 0}, node.Point())
	assert.Equal(t, 3, node.Degree())

	link, ok := net.LinkByID("4-5")
	require.True(t, ok)
	assert.Equal(t, NodeID(4), link.Source())
	assert.Equal(t, NodeID(5), link.Target())
	assert.Equal(t, NodeID(4), link.Opposite(5))
	assert.True(t, link.Connects(5, 4))
	shadow, err := link.ShadowAt(15)
	require.NoError(t, err)
	assert.Equal(t, 0.9, shadow)
	_, err = link.ShadowAt(20)
	assert.ErrorIs(t, err, ErrInvalidInput)

	crosswalk, _ := net.LinkByID("2-5")
	assert.True(t, crosswalk.Has(FACILITY_CROSSWALK))
	assert.False(t, crosswalk.Has(FACILITY_TUNNEL))
}

func TestBuildNetworkMissingShadowsAreZero(t *testing.T) {
	segments := []SegmentRecord{
		segment(1, 2, "a", 10, orb.Point{0, 0}, orb.Point{10, 0}),
	}
	net, err := BuildNetwork(segments, []ShadowRecord{{LinkID: "a", TimeSlot: 9, ShadowRatio: 0.5}, {LinkID: "ghost", TimeSlot: 9, ShadowRatio: 1}})
	require.NoError(t, err)
	link, _ := net.LinkByID("a")
	for hour := FirstTimeSlot; hour <= LastTimeSlot; hour++ {
		shadow, err := link.ShadowAt(hour)
		require.NoError(t, err)
		if hour == 9 {
			assert.Equal(t, 0.5, shadow)
		} else {
			assert.Equal(t, 0.0, shadow, "hour %d", hour)
		}
	}
}

func TestBuildNetworkLaterShadowWins(t *testing.T) {
	segments := []SegmentRecord{
		segment(1, 2, "a", 10, orb.Point{0, 0}, orb.Point{10, 0}),
	}
	shadows := []ShadowRecord{
		{LinkID: "a", TimeSlot: 10, ShadowRatio: 0.2},
		{LinkID: "a", TimeSlot: 10, ShadowRatio: 0.7},
	}
	net, err := BuildNetwork(segments, shadows)
	require.NoError(t, err)
	link, _ := net.LinkByID("a")
	shadow, _ := link.ShadowAt(10)
	assert.Equal(t, 0.7, shadow)
}

func TestBuildNetworkEnclosedLinksAreShaded(t *testing.T) {
	segments := []SegmentRecord{
		segment(1, 2, "tunnel", 80, orb.Point{0, 0}, orb.Point{80, 0}),
		segment(2, 3, "hall", 30, orb.Point{80, 0}, orb.Point{110, 0}),
	}
	segments[0].Tunnel = true
	segments[1].Indoor = true
	net, err := BuildNetwork(segments, flatShadows("tunnel", 0.1))
	require.NoError(t, err)
	for _, linkID := range []string{"tunnel", "hall"} {
		link, _ := net.LinkByID(linkID)
		shadow, _ := link.ShadowAt(14)
		assert.Equal(t, 1.0, shadow, linkID)
	}
	hall, _ := net.LinkByID("hall")
	assert.Equal(t, INDOOR_SEMI, hall.IndoorType())
}

func TestBuildNetworkSelfLoops(t *testing.T) {
	segments := []SegmentRecord{
		segment(1, 2, "a", 10, orb.Point{0, 0}, orb.Point{10, 0}),
		segment(2, 2, "loop", 10, orb.Point{10, 0}, orb.Point{15, 5}, orb.Point{10, 0}),
	}
	net, err := BuildNetwork(segments, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, net.LinksNum())
	_, ok := net.LinkByID("loop")
	assert.False(t, ok)

	_, err = NewNetworkBuilder(WithSelfLoopsRejected()).Build(segments, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildNetworkInvalid(t *testing.T) {
	good := segment(1, 2, "a", 10, orb.Point{0, 0}, orb.Point{10, 0})
	cases := map[string]struct {
		segments []SegmentRecord
		shadows  []ShadowRecord
	}{
		"no links":        {segments: nil},
		"duplicate id":    {segments: []SegmentRecord{good, segment(2, 3, "a", 5, orb.Point{10, 0}, orb.Point{15, 0})}},
		"zero length":     {segments: []SegmentRecord{segment(1, 2, "a", 0, orb.Point{0, 0}, orb.Point{10, 0})}},
		"nan length":      {segments: []SegmentRecord{segment(1, 2, "a", math.NaN(), orb.Point{0, 0}, orb.Point{10, 0})}},
		"short geometry":  {segments: []SegmentRecord{segment(1, 2, "a", 10, orb.Point{0, 0})}},
		"empty link id":   {segments: []SegmentRecord{segment(1, 2, "", 10, orb.Point{0, 0}, orb.Point{10, 0})}},
		"slot out of day": {segments: []SegmentRecord{good}, shadows: []ShadowRecord{{LinkID: "a", TimeSlot: 7, ShadowRatio: 0.5}}},
		"ratio above one": {segments: []SegmentRecord{good}, shadows: []ShadowRecord{{LinkID: "a", TimeSlot: 8, ShadowRatio: 1.5}}},
		"negative ratio":  {segments: []SegmentRecord{good}, shadows: []ShadowRecord{{LinkID: "a", TimeSlot: 8, ShadowRatio: -0.1}}},
		"only self-loops": {segments: []SegmentRecord{segment(1, 1, "x", 10, orb.Point{0, 0}, orb.Point{0, 0})}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildNetwork(c.segments, c.shadows)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCloneIsolatesCosts(t *testing.T) {
	base := gridNetwork(t)
	require.Error(t, Annotate(base, hotNoon, nil), "base network must reject annotation")

	first := annotated(t, base, hotNoon, nil)
	second := annotated(t, base, Condition{TimeSlot: 12, RainMM: 5, Temperature: 30, Humidity: 90}, nil)

	idx := linkIdx(t, base, "4-5")
	assert.Equal(t, 0.9, first.Link(idx).ShadowRatio())
	assert.Equal(t, 0.0, second.Link(idx).ShadowRatio())
	assert.Equal(t, 0.0, base.Link(idx).Cost(PROFILE_SHORTEST), "base network stays untouched")
	assert.False(t, base.Annotated())
}
