package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/shaderoute"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	segmentsFile = flag.String("segments", "road_segments.csv", "Filename of road segments CSV file (u, v, link_id, length, geometry as WKT, optional tunnel/footbridge/indoor/crosswalk)")
	shadowsFile  = flag.String("shadows", "", "Filename of hourly shadows CSV file (link_id, time_slot, shadow_ratio). Empty means no shade anywhere")
	osmFileName  = flag.String("osm", "", "Filename of *.osm.pbf or *.osm file. When set segments are imported from OSM instead of CSV")
	tagStr       = flag.String("tags", strings.Join(shaderoute.DefaultPedestrianTags, ","), "Set of needed highway tags for OSM import (separated by commas)")
	delimiter    = flag.String("delim", ",", "Delimiter of input CSV files")
	exportFile   = flag.String("export", "", "Filename of 'Comma-Separated Values' (CSV) formatted file to export built network to. E.g.: if file name is 'net.csv' then 2 files will be produced: 'net_links.csv', 'net_nodes.csv'")
	fromNode     = flag.Int64("from", 0, "Origin node identifier")
	toNode       = flag.Int64("to", 0, "Destination node identifier")
	timeSlot     = flag.Int("hour", 14, "Hour of the walk in [8, 19]")
	scenario     = flag.String("scenario", "heatwave", "Weather scenario. Expected values: heatwave / rain")
	persona      = flag.String("persona", "", "Persona preset for personal route. Expected values: custom / 2030 / elderly / office / health. Empty means no personal route")
	geojsonOut   = flag.String("geojson", "", "Filename to write routes as GeoJSON FeatureCollection")
	wgs84        = flag.Bool("wgs84", false, "Unproject Web Mercator coordinates to longitude/latitude in GeoJSON output")
	geomFormat   = flag.String("geomf", "", "Print route geometry in given format. Expected values: wkt / geojson. Empty means no geometry")
	verbose      = flag.Bool("verbose", false, "Development logging")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("Failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(logger *zap.Logger) error {
	st := time.Now()
	net, err := loadNetwork(logger)
	if err != nil {
		return errors.Wrap(err, "Can't load network")
	}
	logger.Info("Network is ready", zap.Int("nodes", net.NodesNum()), zap.Int("links", net.LinksNum()), zap.Duration("elapsed", time.Since(st)))

	if *exportFile != "" {
		err = net.ExportToCSV(*exportFile)
		if err != nil {
			return errors.Wrap(err, "Can't export network")
		}
		logger.Info("Network has been exported", zap.String("file", *exportFile))
	}
	if *fromNode == 0 && *toNode == 0 {
		return nil
	}

	forecast, err := shaderoute.ForecastByName(*scenario)
	if err != nil {
		return err
	}
	cond, err := forecast.At(*timeSlot)
	if err != nil {
		return err
	}
	req := shaderoute.PlanRequest{
		From:      shaderoute.EndpointAtNode(shaderoute.NodeID(*fromNode)),
		To:        shaderoute.EndpointAtNode(shaderoute.NodeID(*toNode)),
		Condition: cond,
	}
	if *persona != "" {
		pref, err := shaderoute.PersonaPreference(*persona)
		if err != nil {
			return err
		}
		req.Preference = &pref
	}

	planner, err := shaderoute.NewPlanner(net, shaderoute.WithLogger(logger), shaderoute.WithCacheSize(0))
	if err != nil {
		return errors.Wrap(err, "Can't prepare planner")
	}
	result, err := planner.Plan(context.Background(), req)
	if err != nil {
		return errors.Wrap(err, "Can't plan routes")
	}
	printSummary(result, forecast)

	if *geojsonOut != "" {
		options := []func(*shaderoute.GeoJSONOptions){}
		if *wgs84 {
			options = append(options, shaderoute.WithWGS84Output())
		}
		b, err := shaderoute.RoutesToGeoJSON(result.Network(), result.Routes, options...)
		if err != nil {
			return err
		}
		err = os.WriteFile(*geojsonOut, b, 0644)
		if err != nil {
			return errors.Wrap(err, "Can't write GeoJSON")
		}
		logger.Info("Routes have been written", zap.String("file", *geojsonOut))
	}
	return nil
}

func loadNetwork(logger *zap.Logger) (*shaderoute.Network, error) {
	var (
		segments []shaderoute.SegmentRecord
		shadows  []shaderoute.ShadowRecord
		err      error
	)
	comma := ','
	if *delimiter != "" {
		comma = []rune(*delimiter)[0]
	}
	if *osmFileName != "" {
		cfg := shaderoute.NewPedestrianConfiguration()
		cfg.Tags = strings.Split(*tagStr, ",")
		segments, err = shaderoute.ImportSegmentsFromOSM(*osmFileName, cfg, logger)
		if err != nil {
			return nil, errors.Wrap(err, "Can't import OSM")
		}
	} else {
		segments, err = readSegments(*segmentsFile, comma)
		if err != nil {
			return nil, err
		}
	}
	if *shadowsFile != "" {
		shadows, err = readShadows(*shadowsFile, comma)
		if err != nil {
			return nil, err
		}
	}
	builder := shaderoute.NewNetworkBuilder(shaderoute.WithBuilderLogger(logger))
	return builder.Build(segments, shadows)
}

func readSegments(fname string, comma rune) ([]shaderoute.SegmentRecord, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open segments file")
	}
	defer file.Close()
	return shaderoute.ReadSegmentsCSV(file, shaderoute.WithDelimiter(comma))
}

func readShadows(fname string, comma rune) ([]shaderoute.ShadowRecord, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open shadows file")
	}
	defer file.Close()
	return shaderoute.ReadShadowsCSV(file, shaderoute.WithDelimiter(comma))
}

func printSummary(result *shaderoute.PlanResult, forecast shaderoute.Forecast) {
	cond := result.Condition
	fmt.Printf("Routes %d -> %d at %d:00 (%.1f°C, rain %.1f mm, humidity %.0f%%)\n", result.From, result.To, cond.TimeSlot, cond.Temperature, cond.RainMM, cond.Humidity)
	if result.Heatwave {
		fmt.Println("Heatwave advisory: temperature is above threshold")
	}
	for _, route := range result.Routes {
		fmt.Printf("\t%-8s length: %7.1f m | time: %6.0f s | shadow: %.2f | Δapparent: %+.1f°C | score: %5.1f (%s)",
			route.Name,
			route.Length,
			route.Time,
			route.AvgShadow,
			route.KPI.Temperature.Diff,
			route.Grade.Score,
			route.Grade.Grade,
		)
		if route.Fallback {
			fmt.Printf(" | detour budget not satisfied, baseline used")
		}
		fmt.Println()
		obstacles := route.KPI.Obstacles
		fmt.Printf("\t\tcrosswalks: %d, footbridges: %d, tunnels: %d, indoor: %d\n", obstacles.Crosswalk, obstacles.Footbridge, obstacles.Tunnel, obstacles.Indoor)
		switch strings.ToLower(*geomFormat) {
		case "wkt":
			fmt.Printf("\t\t%s\n", shaderoute.PrepareWKTLinestring(result.Network().PathGeometry(route.Path)))
			for _, marker := range route.Markers {
				fmt.Printf("\t\t%s at %s\n", marker.Name, shaderoute.PrepareWKTPoint(marker.Point))
			}
		case "geojson":
			geom, err := shaderoute.PrepareGeoJSONLinestring(result.Network().PathGeometry(route.Path))
			if err == nil {
				fmt.Printf("\t\t%s\n", geom)
			}
		}
	}
	if cooling, ok := result.Route(shaderoute.PROFILE_COOLING); ok {
		fmt.Println("Feels like along cooling route:")
		for _, hour := range forecast.FeelsLikeSeries(cooling.AvgShadow) {
			fmt.Printf("\t%02d:00 %5.1f°C -> %5.1f°C\n", hour.TimeSlot, hour.Temperature, hour.FeelsLike)
		}
	}
}
