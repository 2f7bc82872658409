package shaderoute

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// OSMScanner is common interface of PBF and XML scanners
type OSMScanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

type wayData struct {
	ID         osm.WayID
	Nodes      []osm.NodeID
	facilities wayFacilities
}

type nodeData struct {
	pt       orb.Point
	crossing bool
	useCount int
}

func newOSMScanner(ctx context.Context, file *os.File, filename string) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(ctx, file), nil
	case ".pbf":
		return osmpbf.New(ctx, file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// ImportSegmentsFromOSM reads pedestrian ways from OSM extract and splits them into road segments at shared nodes.
//
// Geometry is projected to Web Mercator, length is haversine length in meters.
func ImportSegmentsFromOSM(filename string, cfg *OSMConfiguration, logger *zap.Logger) ([]SegmentRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = NewPedestrianConfiguration()
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	st := time.Now()
	ways, nodesSeen, err := scanWays(file, filename, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan ways")
	}
	logger.Info("Ways have been scanned", zap.Int("ways", len(ways)), zap.Duration("elapsed", time.Since(st)))

	// Seek file to start
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	st = time.Now()
	nodes, err := scanNodes(file, filename, nodesSeen)
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan nodes")
	}
	logger.Info("Nodes have been scanned", zap.Int("nodes", len(nodes)), zap.Duration("elapsed", time.Since(st)))

	segments, err := splitWays(ways, nodes, logger)
	if err != nil {
		return nil, errors.Wrap(err, "Can't split ways")
	}
	logger.Info("Segments have been prepared", zap.Int("segments", len(segments)))
	return segments, nil
}

func scanWays(file *os.File, filename string, cfg *OSMConfiguration) ([]wayData, map[osm.NodeID]struct{}, error) {
	scanner, err := newOSMScanner(context.Background(), file, filename)
	if err != nil {
		return nil, nil, err
	}
	defer scanner.Close()

	ways := []wayData{}
	nodesSeen := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != "way" {
			continue
		}
		way := obj.(*osm.Way)
		if len(way.Nodes) < 2 || !cfg.walkable(way.Tags) {
			continue
		}
		prepared := wayData{
			ID:         way.ID,
			Nodes:      make([]osm.NodeID, 0, len(way.Nodes)),
			facilities: facilitiesOfWay(way.Tags),
		}
		for _, node := range way.Nodes {
			nodesSeen[node.ID] = struct{}{}
			prepared.Nodes = append(prepared.Nodes, node.ID)
		}
		ways = append(ways, prepared)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return ways, nodesSeen, nil
}

func scanNodes(file *os.File, filename string, nodesSeen map[osm.NodeID]struct{}) (map[osm.NodeID]*nodeData, error) {
	scanner, err := newOSMScanner(context.Background(), file, filename)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	nodes := make(map[osm.NodeID]*nodeData, len(nodesSeen))
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		if _, ok := nodesSeen[node.ID]; !ok {
			continue
		}
		delete(nodesSeen, node.ID)
		nodes[node.ID] = &nodeData{
			pt:       orb.Point{node.Lon, node.Lat},
			crossing: isCrossingNode(node.Tags),
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// splitWays cuts ways at nodes shared with other ways
func splitWays(ways []wayData, nodes map[osm.NodeID]*nodeData, logger *zap.Logger) ([]SegmentRecord, error) {
	for _, way := range ways {
		for i, nodeID := range way.Nodes {
			node, ok := nodes[nodeID]
			if !ok {
				return nil, fmt.Errorf("Missing node with id: %d", nodeID)
			}
			if i == 0 || i == len(way.Nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}

	segments := []SegmentRecord{}
	skipped := 0
	for _, way := range ways {
		source := way.Nodes[0]
		first := nodes[source]
		geometry := orb.LineString{first.pt}
		crossing := first.crossing
		seq := 0
		for i := 1; i < len(way.Nodes); i++ {
			node := nodes[way.Nodes[i]]
			geometry = append(geometry, node.pt)
			crossing = crossing || node.crossing
			if node.useCount < 2 && i != len(way.Nodes)-1 {
				continue
			}
			target := way.Nodes[i]
			length := sphericalLength(geometry)
			if source == target || length <= 0 {
				skipped++
			} else {
				segments = append(segments, SegmentRecord{
					U:          int64(source),
					V:          int64(target),
					LinkID:     fmt.Sprintf("%d_%d", way.ID, seq),
					Length:     length,
					Geometry:   lineToMercator(geometry),
					Tunnel:     way.facilities.tunnel,
					Footbridge: way.facilities.footbridge,
					Indoor:     way.facilities.indoor,
					Crosswalk:  way.facilities.crosswalk || crossing,
				})
				seq++
			}
			source = target
			geometry = orb.LineString{node.pt}
			crossing = false
		}
	}
	if skipped > 0 {
		logger.Debug("Degenerate segments skipped", zap.Int("skipped", skipped))
	}
	return segments, nil
}
