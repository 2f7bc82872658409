package shaderoute

import (
	"container/heap"

	"github.com/pkg/errors"
)

// RankedPathEnumerator yields simple paths between two nodes in non-decreasing order of weight.
//
// Sequence is lazy, finite and can't be restarted:
//
//	for enumerator.Next() {
//		path := enumerator.Path()
//	}
//	if err := enumerator.Err(); err != nil {
//		...
//	}
type RankedPathEnumerator interface {
	Next() bool
	Path() Path
	Weight() float64
	Err() error
}

// YenEnumerator is Yen's loopless k-shortest paths generator.
// Path identity is its link sequence, so paths over different parallel links are distinct.
type YenEnumerator struct {
	net    *Network
	source NodeID
	target NodeID
	weight WeightFunc

	accepted   []Path
	candidates pathPQ
	seen       map[string]struct{}

	current Path
	curW    float64
	done    bool
	err     error
}

// NewYenEnumerator returns enumerator over simple paths from source to target
func NewYenEnumerator(net *Network, source, target NodeID, weight WeightFunc) (*YenEnumerator, error) {
	if source == target {
		return nil, invalidInputf("source and target are the same node %d", source)
	}
	if _, ok := net.nodes[source]; !ok {
		return nil, invalidInputf("unknown source node %d", source)
	}
	if _, ok := net.nodes[target]; !ok {
		return nil, invalidInputf("unknown target node %d", target)
	}
	return &YenEnumerator{
		net:    net,
		source: source,
		target: target,
		weight: weight,
		seen:   make(map[string]struct{}),
	}, nil
}

// Next advances to the next path. It returns false when paths are exhausted or on error
func (yen *YenEnumerator) Next() bool {
	if yen.done {
		return false
	}
	if len(yen.accepted) == 0 {
		path, w, ok := shortestPathExcluding(yen.net, yen.source, yen.target, yen.weight, nil, nil)
		if !ok {
			yen.done = true
			yen.err = errors.Wrapf(ErrNoRouteFound, "nodes %d and %d are not connected", yen.source, yen.target)
			return false
		}
		yen.accept(path, w)
		return true
	}

	yen.spur(yen.accepted[len(yen.accepted)-1])
	if yen.candidates.Len() == 0 {
		yen.done = true
		return false
	}
	item := heap.Pop(&yen.candidates).(*pathItem)
	yen.accept(item.path, item.weight)
	return true
}

func (yen *YenEnumerator) accept(path Path, w float64) {
	yen.accepted = append(yen.accepted, path)
	yen.seen[path.key()] = struct{}{}
	yen.current = path
	yen.curW = w
}

// spur generates deviations of the last accepted path at each of its nodes
func (yen *YenEnumerator) spur(prev Path) {
	for i := 0; i < len(prev.Links); i++ {
		spurNode := prev.Nodes[i]
		rootLinks := prev.Links[:i]

		bannedLinks := map[int]struct{}{}
		for _, p := range yen.accepted {
			if len(p.Links) > i && sameLinks(p.Links[:i], rootLinks) {
				bannedLinks[p.Links[i]] = struct{}{}
			}
		}
		bannedNodes := make(map[NodeID]struct{}, i)
		for _, node := range prev.Nodes[:i] {
			bannedNodes[node] = struct{}{}
		}

		spurPath, _, ok := shortestPathExcluding(yen.net, spurNode, yen.target, yen.weight, bannedLinks, bannedNodes)
		if !ok {
			continue
		}
		total := Path{
			Nodes: make([]NodeID, 0, i+len(spurPath.Nodes)),
			Links: make([]int, 0, i+len(spurPath.Links)),
		}
		total.Nodes = append(total.Nodes, prev.Nodes[:i]...)
		total.Nodes = append(total.Nodes, spurPath.Nodes...)
		total.Links = append(total.Links, rootLinks...)
		total.Links = append(total.Links, spurPath.Links...)

		key := total.key()
		if _, ok := yen.seen[key]; ok {
			continue
		}
		yen.seen[key] = struct{}{}
		heap.Push(&yen.candidates, &pathItem{path: total, weight: yen.net.PathWeight(total, yen.weight), key: key})
	}
}

// Path returns current path
func (yen *YenEnumerator) Path() Path {
	return yen.current
}

// Weight returns weight of current path
func (yen *YenEnumerator) Weight() float64 {
	return yen.curW
}

// Err returns error stopped the enumeration, if any
func (yen *YenEnumerator) Err() error {
	return yen.err
}

func sameLinks(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type pathItem struct {
	path   Path
	weight float64
	key    string
}

type pathPQ []*pathItem

func (pq pathPQ) Len() int { return len(pq) }

func (pq pathPQ) Less(i, j int) bool {
	if pq[i].weight == pq[j].weight {
		if len(pq[i].path.Links) != len(pq[j].path.Links) {
			return len(pq[i].path.Links) < len(pq[j].path.Links)
		}
		return pq[i].key < pq[j].key
	}
	return pq[i].weight < pq[j].weight
}

func (pq pathPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *pathPQ) Push(x interface{}) { *pq = append(*pq, x.(*pathItem)) }

func (pq *pathPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
