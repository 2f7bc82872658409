package shaderoute

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="55.750" lon="37.600" version="1"/>
  <node id="2" lat="55.750" lon="37.601" version="1"/>
  <node id="3" lat="55.750" lon="37.602" version="1"/>
  <node id="4" lat="55.751" lon="37.601" version="1">
    <tag k="highway" v="crossing"/>
  </node>
  <node id="5" lat="55.749" lon="37.601" version="1"/>
  <way id="100" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="200" version="1">
    <nd ref="4"/>
    <nd ref="2"/>
    <nd ref="5"/>
    <tag k="highway" v="footway"/>
    <tag k="bridge" v="yes"/>
  </way>
  <way id="300" version="1">
    <nd ref="3"/>
    <nd ref="5"/>
    <tag k="highway" v="motorway"/>
  </way>
  <way id="400" version="1">
    <nd ref="1"/>
    <nd ref="5"/>
    <tag k="highway" v="footway"/>
    <tag k="foot" v="no"/>
  </way>
</osm>
`

func TestImportSegmentsFromOSM(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.osm")
	require.NoError(t, os.WriteFile(fname, []byte(sampleOSM), 0644))

	segments, err := ImportSegmentsFromOSM(fname, nil, nil)
	require.NoError(t, err)
	require.Len(t, segments, 4)

	byID := map[string]SegmentRecord{}
	for _, seg := range segments {
		byID[seg.LinkID] = seg
	}
	require.Contains(t, byID, "100_0")
	require.Contains(t, byID, "100_1")
	require.Contains(t, byID, "200_0")
	require.Contains(t, byID, "200_1")

	first := byID["100_0"]
	assert.Equal(t, int64(1), first.U)
	assert.Equal(t, int64(2), first.V)
	lonlat := orb.LineString{{37.600, 55.750}, {37.601, 55.750}}
	assert.InDelta(t, sphericalLength(lonlat), first.Length, eps)
	assert.Equal(t, lineToMercator(lonlat), first.Geometry)
	assert.False(t, first.Footbridge)
	assert.False(t, first.Crosswalk)

	assert.Equal(t, int64(3), byID["100_1"].V)

	bridgeStart := byID["200_0"]
	assert.Equal(t, int64(4), bridgeStart.U)
	assert.Equal(t, int64(2), bridgeStart.V)
	assert.True(t, bridgeStart.Footbridge)
	assert.True(t, bridgeStart.Crosswalk, "crossing node marks the segment")
	bridgeEnd := byID["200_1"]
	assert.True(t, bridgeEnd.Footbridge)
	assert.False(t, bridgeEnd.Crosswalk)

	net, err := BuildNetwork(segments, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, net.NodesNum())
}

func TestImportSegmentsFromOSMUnknownExtension(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(fname, []byte("{}"), 0644))
	_, err := ImportSegmentsFromOSM(fname, nil, nil)
	assert.Error(t, err)
}

func TestSplitWaysMissingNode(t *testing.T) {
	ways := []wayData{{ID: 1, Nodes: []osm.NodeID{1, 2}}}
	nodes := map[osm.NodeID]*nodeData{1: {pt: orb.Point{37.6, 55.7}}}
	_, err := splitWays(ways, nodes, nil)
	assert.Error(t, err)
}

func TestWalkable(t *testing.T) {
	cfg := NewPedestrianConfiguration()
	assert.True(t, cfg.walkable(osm.Tags{{Key: "highway", Value: "footway"}}))
	assert.False(t, cfg.walkable(osm.Tags{{Key: "highway", Value: "motorway"}}))
	assert.False(t, cfg.walkable(osm.Tags{{Key: "highway", Value: "residential"}, {Key: "foot", Value: "no"}}))
	assert.False(t, cfg.walkable(osm.Tags{{Key: "highway", Value: "service"}, {Key: "access", Value: "private"}}))
	assert.True(t, cfg.walkable(osm.Tags{{Key: "highway", Value: "service"}, {Key: "access", Value: "no"}, {Key: "foot", Value: "designated"}}))

	cfg.Tags = []string{"motorway"}
	assert.True(t, cfg.walkable(osm.Tags{{Key: "highway", Value: "motorway"}}))
	assert.NotContains(t, DefaultPedestrianTags, "motorway", "custom tags must not leak into defaults")
}

func TestFacilitiesOfWay(t *testing.T) {
	assert.Equal(t, wayFacilities{tunnel: true}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "footway"}, {Key: "tunnel", Value: "yes"}}))
	assert.Equal(t, wayFacilities{tunnel: true}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "service"}, {Key: "tunnel", Value: "building_passage"}}))
	assert.Equal(t, wayFacilities{footbridge: true}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "steps"}, {Key: "bridge", Value: "yes"}}))
	assert.Equal(t, wayFacilities{}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "primary"}, {Key: "bridge", Value: "yes"}}))
	assert.Equal(t, wayFacilities{crosswalk: true}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "footway"}, {Key: "footway", Value: "crossing"}}))
	assert.Equal(t, wayFacilities{indoor: true}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "corridor"}}))
	assert.Equal(t, wayFacilities{indoor: true}, facilitiesOfWay(osm.Tags{{Key: "highway", Value: "footway"}, {Key: "level", Value: "0;-1"}}))
}

func TestBelowGround(t *testing.T) {
	assert.False(t, belowGround(""))
	assert.False(t, belowGround("0;1"))
	assert.True(t, belowGround("-1"))
	assert.True(t, belowGround("0; -0.5"))
	assert.False(t, belowGround("roof"))
}
