package shaderoute

import (
	"sync"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// LengthIndex answers shortest-by-length queries on the static base network with contraction hierarchies.
//
// Link lengths never change between requests, so hierarchies are prepared once per process.
type LengthIndex struct {
	net *Network
	// ch query buffers are not safe for concurrent use
	mu    sync.Mutex
	graph *ch.Graph
}

// NewLengthIndex prepares contraction hierarchies over link lengths of the network.
// Only the shortest of parallel links takes part since the path keeps it anyway.
func NewLengthIndex(net *Network) (*LengthIndex, error) {
	graph := &ch.Graph{}
	for _, id := range net.NodeIDs() {
		err := graph.CreateVertex(int64(id))
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create vertex %d", id)
		}
	}
	type pair struct{ a, b NodeID }
	shortest := make(map[pair]float64, len(net.links))
	for i := range net.links {
		link := &net.links[i]
		key := pair{link.sourceNodeID, link.targetNodeID}
		if key.a > key.b {
			key.a, key.b = key.b, key.a
		}
		if length, ok := shortest[key]; !ok || link.lengthMeters < length {
			shortest[key] = link.lengthMeters
		}
	}
	for key, length := range shortest {
		err := graph.AddEdge(int64(key.a), int64(key.b), length)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add edge %d->%d", key.a, key.b)
		}
		err = graph.AddEdge(int64(key.b), int64(key.a), length)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add edge %d->%d", key.b, key.a)
		}
	}
	graph.PrepareContractionHierarchies()
	return &LengthIndex{net: net, graph: graph}, nil
}

// ShortestPath returns shortest by length path between source and target.
// Link indices of the path are valid for every clone of the indexed network.
func (index *LengthIndex) ShortestPath(source, target NodeID) (Path, float64, error) {
	if source == target {
		return Path{}, 0, invalidInputf("source and target are the same node %d", source)
	}
	if _, ok := index.net.nodes[source]; !ok {
		return Path{}, 0, invalidInputf("unknown source node %d", source)
	}
	if _, ok := index.net.nodes[target]; !ok {
		return Path{}, 0, invalidInputf("unknown target node %d", target)
	}
	index.mu.Lock()
	length, vertices := index.graph.ShortestPath(int64(source), int64(target))
	index.mu.Unlock()
	if length < 0 || len(vertices) < 2 {
		return Path{}, 0, errors.Wrapf(ErrNoRouteFound, "nodes %d and %d are not connected", source, target)
	}
	nodes := make([]NodeID, len(vertices))
	for i, v := range vertices {
		nodes[i] = NodeID(v)
	}
	path, err := index.net.PathFromNodes(nodes, LengthWeight)
	if err != nil {
		return Path{}, 0, errors.Wrap(err, "Can't restore path from hierarchies")
	}
	return path, index.net.PathLength(path), nil
}
