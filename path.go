package shaderoute

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Path is a walk through network. Links[i] is arena index of the link joining Nodes[i] and Nodes[i+1]
type Path struct {
	Nodes []NodeID
	Links []int
}

// Empty reports whether path has no links
func (path Path) Empty() bool {
	return len(path.Links) == 0
}

// Equal reports whether both paths take exactly the same links in the same order
func (path Path) Equal(other Path) bool {
	if len(path.Links) != len(other.Links) || len(path.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range path.Links {
		if path.Links[i] != other.Links[i] {
			return false
		}
	}
	for i := range path.Nodes {
		if path.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	return true
}

// key returns identity of the path by its link sequence
func (path Path) key() string {
	var sb strings.Builder
	for i, idx := range path.Links {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

func (path Path) clone() Path {
	nodes := make([]NodeID, len(path.Nodes))
	copy(nodes, path.Nodes)
	links := make([]int, len(path.Links))
	copy(links, path.Links)
	return Path{Nodes: nodes, Links: links}
}

// WeightFunc returns non-negative weight of a link
type WeightFunc func(link *NetworkLink) float64

// LengthWeight weights links by length in meters
func LengthWeight(link *NetworkLink) float64 {
	return link.lengthMeters
}

// ProfileWeight weights links by request-scoped cost of the profile
func ProfileWeight(p Profile) WeightFunc {
	return func(link *NetworkLink) float64 {
		return link.costs.Get(p)
	}
}

// PathWeight sums weight of path links
func (net *Network) PathWeight(path Path, weight WeightFunc) float64 {
	total := 0.0
	for _, idx := range path.Links {
		total += weight(&net.links[idx])
	}
	return total
}

// PathLength returns path length in meters
func (net *Network) PathLength(path Path) float64 {
	return net.PathWeight(path, LengthWeight)
}

// PathCost returns path cost for the profile
func (net *Network) PathCost(path Path, p Profile) float64 {
	return net.PathWeight(path, ProfileWeight(p))
}

// PathLinkIDs returns external identifiers of path links
func (net *Network) PathLinkIDs(path Path) []string {
	ids := make([]string, len(path.Links))
	for i, idx := range path.Links {
		ids[i] = net.links[idx].ID
	}
	return ids
}

// PathFromNodes builds path from node sequence. Between parallel links the one with the lowest weight is taken
func (net *Network) PathFromNodes(nodes []NodeID, weight WeightFunc) (Path, error) {
	if len(nodes) < 2 {
		return Path{}, invalidInputf("path must contain at least 2 nodes, got %d", len(nodes))
	}
	path := Path{
		Nodes: make([]NodeID, len(nodes)),
		Links: make([]int, 0, len(nodes)-1),
	}
	copy(path.Nodes, nodes)
	for i := 0; i < len(nodes)-1; i++ {
		candidates := net.linksBetween(nodes[i], nodes[i+1])
		if len(candidates) == 0 {
			return Path{}, invalidInputf("no link between nodes %d and %d", nodes[i], nodes[i+1])
		}
		best := candidates[0]
		for _, idx := range candidates[1:] {
			if weight(&net.links[idx]) < weight(&net.links[best]) {
				best = idx
			}
		}
		path.Links = append(path.Links, best)
	}
	return path, nil
}

// PathGeometry returns planar polyline of the path oriented from the first node to the last
func (net *Network) PathGeometry(path Path) orb.LineString {
	line := orb.LineString{}
	for i, idx := range path.Links {
		link := &net.links[idx]
		geom := link.geom
		if link.sourceNodeID != path.Nodes[i] {
			geom = geom.Clone()
			geom.Reverse()
		}
		if len(line) > 0 && len(geom) > 0 && line[len(line)-1].Equal(geom[0]) {
			geom = geom[1:]
		}
		line = append(line, geom...)
	}
	return line
}
