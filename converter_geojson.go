package shaderoute

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// GeoJSONOptions tunes route export
type GeoJSONOptions struct {
	toWGS84 bool
}

// WithWGS84Output unprojects Web Mercator coordinates to longitude/latitude on export
func WithWGS84Output() func(*GeoJSONOptions) {
	return func(opts *GeoJSONOptions) {
		opts.toWGS84 = true
	}
}

func lineCoordinates(line orb.LineString, opts GeoJSONOptions) [][]float64 {
	if opts.toWGS84 {
		line = lineToWGS84(line)
	}
	pts := make([][]float64, len(line))
	for i := range line {
		pts[i] = []float64{line[i].X(), line[i].Y()}
	}
	return pts
}

// RoutesToGeoJSON returns FeatureCollection with one LineString feature per link of every route
// and one Point feature per obstacle marker
func RoutesToGeoJSON(net *Network, routes []Route, options ...func(*GeoJSONOptions)) ([]byte, error) {
	opts := GeoJSONOptions{}
	for _, option := range options {
		option(&opts)
	}
	fc := geojson.NewFeatureCollection()
	for _, route := range routes {
		for i, idx := range route.Path.Links {
			link := &net.links[idx]
			feature := geojson.NewLineStringFeature(lineCoordinates(link.geom, opts))
			feature.SetProperty("profile", route.Profile.String())
			feature.SetProperty("seq", i)
			feature.SetProperty("link_id", link.ID)
			feature.SetProperty("length", link.lengthMeters)
			feature.SetProperty("shadow_ratio", link.shadowRatio)
			feature.SetProperty("cost", link.costs.Get(route.Profile))
			fc.AddFeature(feature)
		}
		for _, marker := range route.Markers {
			pt := marker.Point
			if opts.toWGS84 {
				pt = pointToWGS84(pt)
			}
			feature := geojson.NewPointFeature([]float64{pt.X(), pt.Y()})
			feature.SetProperty("profile", route.Profile.String())
			feature.SetProperty("obstacle", marker.Name)
			feature.SetProperty("link_id", marker.LinkID)
			fc.AddFeature(feature)
		}
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal routes")
	}
	return b, nil
}

// PrepareGeoJSONLinestring returns GeoJSON geometry of the line
func PrepareGeoJSONLinestring(line orb.LineString) (string, error) {
	b, err := geojson.NewLineStringGeometry(lineCoordinates(line, GeoJSONOptions{})).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to GeoJSON")
	}
	return string(b), nil
}
