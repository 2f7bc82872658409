package shaderoute

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesToGeoJSON(t *testing.T) {
	net := annotated(t, gridNetwork(t), hotNoon, nil)
	path, err := net.PathFromNodes([]NodeID{1, 2, 5}, LengthWeight)
	require.NoError(t, err)
	route := Route{
		Profile: PROFILE_COOLING,
		Path:    path,
		Markers: ObstacleMarkers(net, path),
	}

	b, err := RoutesToGeoJSON(net, []Route{route})
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(b)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	first := fc.Features[0]
	assert.True(t, first.Geometry.IsLineString())
	assert.Equal(t, [][]float64{{0, 0}, {100, 0}}, first.Geometry.LineString)
	assert.Equal(t, "cooling", first.Properties["profile"])
	assert.Equal(t, "1-2", first.Properties["link_id"])
	assert.EqualValues(t, 0, first.Properties["seq"])
	assert.EqualValues(t, 300, first.Properties["cost"])

	second := fc.Features[1]
	assert.Equal(t, "2-5", second.Properties["link_id"])
	assert.EqualValues(t, 0.5, second.Properties["shadow_ratio"])

	marker := fc.Features[2]
	assert.True(t, marker.Geometry.IsPoint())
	assert.Equal(t, []float64{100, 50}, marker.Geometry.Point)
	assert.Equal(t, "crosswalk", marker.Properties["obstacle"])
}

func TestRoutesToGeoJSONWGS84(t *testing.T) {
	lonlat := orb.LineString{{37.6417, 55.7518}, {37.6430, 55.7520}}
	mercator := lineToMercator(lonlat)
	net, err := BuildNetwork([]SegmentRecord{segment(1, 2, "a", 85, mercator...)}, nil)
	require.NoError(t, err)
	path, err := net.PathFromNodes([]NodeID{1, 2}, LengthWeight)
	require.NoError(t, err)

	b, err := RoutesToGeoJSON(net, []Route{{Profile: PROFILE_SHORTEST, Path: path}}, WithWGS84Output())
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(b)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	coords := fc.Features[0].Geometry.LineString
	assert.InDelta(t, 37.6417, coords[0][0], 1e-9)
	assert.InDelta(t, 55.7520, coords[1][1], 1e-9)
}

func TestPrepareGeometries(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 5}}
	assert.Equal(t, "LINESTRING(0 0,10 5)", PrepareWKTLinestring(line))
	assert.Equal(t, "POINT(1 2)", PrepareWKTPoint(orb.Point{1, 2}))

	geom, err := PrepareGeoJSONLinestring(line)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"LineString","coordinates":[[0,0],[10,5]]}`, geom)
}
