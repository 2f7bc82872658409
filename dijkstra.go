package shaderoute

import (
	"container/heap"
	"math"

	"github.com/pkg/errors"
)

// ShortestPath returns path between source and target minimizing sum of link weights
func ShortestPath(net *Network, source, target NodeID, weight WeightFunc) (Path, float64, error) {
	if source == target {
		return Path{}, 0, invalidInputf("source and target are the same node %d", source)
	}
	if _, ok := net.nodes[source]; !ok {
		return Path{}, 0, invalidInputf("unknown source node %d", source)
	}
	if _, ok := net.nodes[target]; !ok {
		return Path{}, 0, invalidInputf("unknown target node %d", target)
	}
	path, cost, ok := shortestPathExcluding(net, source, target, weight, nil, nil)
	if !ok {
		return Path{}, 0, errors.Wrapf(ErrNoRouteFound, "nodes %d and %d are not connected", source, target)
	}
	return path, cost, nil
}

// shortestPathExcluding runs Dijkstra ignoring banned links and banned nodes.
// Source must not be banned. Equal-distance ties are broken by lower link index.
func shortestPathExcluding(net *Network, source, target NodeID, weight WeightFunc, bannedLinks map[int]struct{}, bannedNodes map[NodeID]struct{}) (Path, float64, bool) {
	dist := map[NodeID]float64{source: 0}
	prevLink := map[NodeID]int{}
	visited := map[NodeID]struct{}{}

	pq := make(nodePQ, 0, 16)
	heap.Push(&pq, &nodeItem{id: source, dist: 0})
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*nodeItem)
		u := item.id
		if _, ok := visited[u]; ok {
			continue
		}
		visited[u] = struct{}{}
		if u == target {
			break
		}
		for _, idx := range net.nodes[u].links {
			if _, banned := bannedLinks[idx]; banned {
				continue
			}
			link := &net.links[idx]
			v := link.Opposite(u)
			if _, banned := bannedNodes[v]; banned {
				continue
			}
			if _, done := visited[v]; done {
				continue
			}
			w := weight(link)
			if w < 0 || math.IsNaN(w) {
				continue
			}
			newDist := dist[u] + w
			oldDist, seen := dist[v]
			if seen && (newDist > oldDist || (newDist == oldDist && idx >= prevLink[v])) {
				continue
			}
			dist[v] = newDist
			prevLink[v] = idx
			heap.Push(&pq, &nodeItem{id: v, dist: newDist})
		}
	}
	if _, ok := visited[target]; !ok {
		return Path{}, 0, false
	}

	links := []int{}
	nodes := []NodeID{target}
	for cur := target; cur != source; {
		idx := prevLink[cur]
		links = append(links, idx)
		cur = net.links[idx].Opposite(cur)
		nodes = append(nodes, cur)
	}
	reverseInts(links)
	reverseNodes(nodes)
	return Path{Nodes: nodes, Links: links}, dist[target], true
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseNodes(s []NodeID) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

type nodeItem struct {
	id   NodeID
	dist float64
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist == pq[j].dist {
		return pq[i].id < pq[j].id
	}
	return pq[i].dist < pq[j].dist
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
