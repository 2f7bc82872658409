package shaderoute

import (
	"github.com/paulmach/orb"
)

/* Nodes stuff */

// NodeID is an external identifier of a network node
type NodeID int64

// NetworkNode is a node of walking network with projected planar position
type NetworkNode struct {
	ID    NodeID
	geom  orb.Point
	links []int
}

func networkNodeFromSegment(id NodeID, pt orb.Point) *NetworkNode {
	return &NetworkNode{
		ID:    id,
		geom:  pt,
		links: make([]int, 0, 2),
	}
}

// Point returns planar position of the node
func (node *NetworkNode) Point() orb.Point {
	return node.geom
}

// Degree returns number of links incident to the node
func (node *NetworkNode) Degree() int {
	return len(node.links)
}
