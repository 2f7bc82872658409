package shaderoute

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// Network is an undirected walking network.
//
// Links live in a flat arena addressed by index. Nodes keep indices of incident links,
// so a clone only has to copy the arena: node adjacency stays valid and is shared.
type Network struct {
	nodes   map[NodeID]*NetworkNode
	links   []NetworkLink
	linkIdx map[string]int

	// frozen networks are shared between requests and reject annotation
	frozen bool
	// timeSlot and rainMM of the last annotation, -1 slot when not annotated
	timeSlot  int
	rainMM    float64
	personal  bool
	annotated bool
}

func newNetwork(nodesCap, linksCap int) *Network {
	return &Network{
		nodes:    make(map[NodeID]*NetworkNode, nodesCap),
		links:    make([]NetworkLink, 0, linksCap),
		linkIdx:  make(map[string]int, linksCap),
		timeSlot: -1,
	}
}

// Clone returns request-scoped copy of the network. Link arena is copied wholesale,
// nodes and link index are shared since nothing mutates them after build.
func (net *Network) Clone() *Network {
	links := make([]NetworkLink, len(net.links))
	copy(links, net.links)
	return &Network{
		nodes:     net.nodes,
		links:     links,
		linkIdx:   net.linkIdx,
		frozen:    false,
		timeSlot:  net.timeSlot,
		rainMM:    net.rainMM,
		personal:  net.personal,
		annotated: net.annotated,
	}
}

// Frozen reports whether the network is a shared base network
func (net *Network) Frozen() bool {
	return net.frozen
}

// Annotated reports whether request-scoped costs have been computed
func (net *Network) Annotated() bool {
	return net.annotated
}

// HasPersonalCosts reports whether personal profile costs have been computed
func (net *Network) HasPersonalCosts() bool {
	return net.personal
}

// NodesNum returns number of nodes
func (net *Network) NodesNum() int {
	return len(net.nodes)
}

// LinksNum returns number of links
func (net *Network) LinksNum() int {
	return len(net.links)
}

// Node returns node by its identifier
func (net *Network) Node(id NodeID) (*NetworkNode, bool) {
	node, ok := net.nodes[id]
	return node, ok
}

// Link returns link by arena index
func (net *Network) Link(idx int) *NetworkLink {
	return &net.links[idx]
}

// LinkByID returns link by its external identifier
func (net *Network) LinkByID(linkID string) (*NetworkLink, bool) {
	idx, ok := net.linkIdx[linkID]
	if !ok {
		return nil, false
	}
	return &net.links[idx], true
}

// NodeIDs returns sorted identifiers of every node
func (net *Network) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(net.nodes))
	for id := range net.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Bound returns bounding box of node positions
func (net *Network) Bound() orb.Bound {
	first := true
	bound := orb.Bound{}
	for _, node := range net.nodes {
		if first {
			bound = node.geom.Bound()
			first = false
			continue
		}
		bound = bound.Extend(node.geom)
	}
	return bound
}

// linksBetween returns arena indices of every link joining a and b
func (net *Network) linksBetween(a, b NodeID) []int {
	node, ok := net.nodes[a]
	if !ok {
		return nil
	}
	ans := []int{}
	for _, idx := range node.links {
		if net.links[idx].Connects(a, b) {
			ans = append(ans, idx)
		}
	}
	return ans
}

// ExportToCSV writes links and nodes of the network into two semicolon separated files
func (net *Network) ExportToCSV(fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameNodes := fnameParts[0] + "_nodes.csv"
	fnameLinks := fnameParts[0] + "_links.csv"

	err := net.exportNodesToCSV(fnameNodes)
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}

	err = net.exportLinksToCSV(fnameLinks)
	if err != nil {
		return errors.Wrap(err, "Can't export links")
	}
	return nil
}

func (net *Network) exportLinksToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	header := []string{"link_id", "source_node", "target_node", "length_meters", "tunnel", "footbridge", "indoor", "crosswalk", "indoor_type"}
	for hour := FirstTimeSlot; hour <= LastTimeSlot; hour++ {
		header = append(header, fmt.Sprintf("shadow_%d", hour))
	}
	header = append(header, "geom")
	err = writer.Write(header)
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for i := range net.links {
		link := &net.links[i]
		row := []string{
			link.ID,
			fmt.Sprintf("%d", link.sourceNodeID),
			fmt.Sprintf("%d", link.targetNodeID),
			fmt.Sprintf("%f", link.lengthMeters),
			fmt.Sprintf("%t", link.tunnel),
			fmt.Sprintf("%t", link.footbridge),
			fmt.Sprintf("%t", link.indoor),
			fmt.Sprintf("%t", link.crosswalk),
			link.IndoorType().String(),
		}
		for _, shadow := range link.shadowByHour {
			row = append(row, fmt.Sprintf("%.3f", shadow))
		}
		row = append(row, wkt.MarshalString(link.geom))
		err = writer.Write(row)
		if err != nil {
			return errors.Wrap(err, "Can't write link")
		}
	}
	return nil
}

func (net *Network) exportNodesToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "degree", "x", "y"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, id := range net.NodeIDs() {
		node := net.nodes[id]
		err = writer.Write([]string{
			fmt.Sprintf("%d", node.ID),
			fmt.Sprintf("%d", node.Degree()),
			fmt.Sprintf("%f", node.geom[0]),
			fmt.Sprintf("%f", node.geom[1]),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	return nil
}
