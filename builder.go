package shaderoute

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NetworkBuilder constructs immutable base network from segment and shadow datasets
type NetworkBuilder struct {
	logger        *zap.Logger
	skipSelfLoops bool
}

func (builder *NetworkBuilder) String() string {
	return fmt.Sprintf(`
Network builder parameters:
	skip self-loops?: %t
	`,
		builder.skipSelfLoops,
	)
}

// NewNetworkBuilder returns builder with given options
func NewNetworkBuilder(options ...func(*NetworkBuilder)) *NetworkBuilder {
	builder := &NetworkBuilder{
		logger:        zap.NewNop(),
		skipSelfLoops: true,
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

// WithBuilderLogger sets logger for the builder
func WithBuilderLogger(logger *zap.Logger) func(*NetworkBuilder) {
	return func(builder *NetworkBuilder) {
		if logger != nil {
			builder.logger = logger
		}
	}
}

// WithSelfLoopsRejected makes self-loop segments a fatal error instead of skipping them
func WithSelfLoopsRejected() func(*NetworkBuilder) {
	return func(builder *NetworkBuilder) {
		builder.skipSelfLoops = false
	}
}

// BuildNetwork builds base network with default builder
func BuildNetwork(segments []SegmentRecord, shadows []ShadowRecord) (*Network, error) {
	return NewNetworkBuilder().Build(segments, shadows)
}

// Build validates datasets and returns frozen base network
func (builder *NetworkBuilder) Build(segments []SegmentRecord, shadows []ShadowRecord) (*Network, error) {
	shadowsByHour, err := indexShadows(shadows)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare shadows")
	}

	net := newNetwork(len(segments), len(segments))
	selfLoops := 0
	for i := range segments {
		seg := &segments[i]
		if seg.U == seg.V {
			if !builder.skipSelfLoops {
				return nil, invalidInputf("link '%s' is a self-loop on node %d", seg.LinkID, seg.U)
			}
			selfLoops++
			builder.logger.Debug("Skip self-loop", zap.String("link_id", seg.LinkID), zap.Int64("node", seg.U))
			continue
		}
		if _, ok := net.linkIdx[seg.LinkID]; ok {
			return nil, invalidInputf("duplicate link_id '%s'", seg.LinkID)
		}
		link, err := networkLinkFromSegment(seg, shadowsByHour)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't prepare link at row %d", i)
		}
		idx := len(net.links)
		net.links = append(net.links, link)
		net.linkIdx[link.ID] = idx

		// First seen position wins when node shows up in several segments
		source, ok := net.nodes[link.sourceNodeID]
		if !ok {
			source = networkNodeFromSegment(link.sourceNodeID, link.geom[0])
			net.nodes[source.ID] = source
		}
		source.links = append(source.links, idx)
		target, ok := net.nodes[link.targetNodeID]
		if !ok {
			target = networkNodeFromSegment(link.targetNodeID, link.geom[len(link.geom)-1])
			net.nodes[target.ID] = target
		}
		target.links = append(target.links, idx)
	}
	if len(net.links) == 0 {
		return nil, invalidInputf("no links in segments dataset")
	}
	unmatched := 0
	for linkID := range linkIDsOf(shadows) {
		if _, ok := net.linkIdx[linkID]; !ok {
			unmatched++
		}
	}
	net.frozen = true
	builder.logger.Info(
		"Network has been built",
		zap.Int("nodes", len(net.nodes)),
		zap.Int("links", len(net.links)),
		zap.Int("self_loops_skipped", selfLoops),
		zap.Int("shadow_links_unmatched", unmatched),
	)
	return net, nil
}

// indexShadows groups shadow ratios by hour and link. Later rows override earlier ones
func indexShadows(shadows []ShadowRecord) (map[int]map[string]float64, error) {
	byHour := make(map[int]map[string]float64, timeSlotsNum)
	for hour := FirstTimeSlot; hour <= LastTimeSlot; hour++ {
		byHour[hour] = make(map[string]float64)
	}
	for i, shadow := range shadows {
		if shadow.TimeSlot < FirstTimeSlot || shadow.TimeSlot > LastTimeSlot {
			return nil, invalidInputf("shadow row %d: time_slot %d is out of [%d, %d]", i, shadow.TimeSlot, FirstTimeSlot, LastTimeSlot)
		}
		if math.IsNaN(shadow.ShadowRatio) || shadow.ShadowRatio < 0 || shadow.ShadowRatio > 1 {
			return nil, invalidInputf("shadow row %d: shadow_ratio %f is out of [0, 1]", i, shadow.ShadowRatio)
		}
		byHour[shadow.TimeSlot][shadow.LinkID] = shadow.ShadowRatio
	}
	return byHour, nil
}

func linkIDsOf(shadows []ShadowRecord) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, shadow := range shadows {
		ids[shadow.LinkID] = struct{}{}
	}
	return ids
}
