package shaderoute

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"github.com/pkg/errors"
)

// NodeIndex resolves planar points to the closest network node
type NodeIndex struct {
	tree *quadtree.Quadtree
}

// indexedNode wraps node to satisfy orb.Pointer
type indexedNode struct {
	id NodeID
	pt orb.Point
}

func (in *indexedNode) Point() orb.Point {
	return in.pt
}

// NewNodeIndex builds quadtree over node positions of the network
func NewNodeIndex(net *Network) (*NodeIndex, error) {
	if len(net.nodes) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "network has no nodes")
	}
	// Padding keeps nodes lying on the bound edge inside the tree
	bound := net.Bound().Pad(1.0)
	tree := quadtree.New(bound)
	for _, id := range net.NodeIDs() {
		node := net.nodes[id]
		err := tree.Add(&indexedNode{id: node.ID, pt: node.geom})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't index node %d", node.ID)
		}
	}
	return &NodeIndex{tree: tree}, nil
}

// Nearest returns closest node to the point and distance to it in planar units
func (index *NodeIndex) Nearest(pt orb.Point) (NodeID, float64, error) {
	found := index.tree.Find(pt)
	if found == nil {
		return 0, 0, errors.Wrap(ErrInvalidInput, "node index is empty")
	}
	node := found.(*indexedNode)
	return node.id, planar.Distance(pt, node.pt), nil
}
