package shaderoute

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/LdDl/shaderoute"

	defaultCacheSize = 256
)

// EnumeratorFactory creates ranked path enumerator over annotated request network
type EnumeratorFactory func(net *Network, source, target NodeID) (RankedPathEnumerator, error)

// YenByLength enumerates loopless paths ordered by length
func YenByLength(net *Network, source, target NodeID) (RankedPathEnumerator, error) {
	return NewYenEnumerator(net, source, target, LengthWeight)
}

// Endpoint is either a node identifier or a planar point snapped to the closest node
type Endpoint struct {
	NodeID *NodeID    `json:"node_id,omitempty"`
	Point  *orb.Point `json:"point,omitempty"`
}

// EndpointAtNode returns endpoint for known node
func EndpointAtNode(id NodeID) Endpoint {
	return Endpoint{NodeID: &id}
}

// EndpointAtPoint returns endpoint for planar position
func EndpointAtPoint(pt orb.Point) Endpoint {
	return Endpoint{Point: &pt}
}

// PlanRequest is a single routing request
type PlanRequest struct {
	From       Endpoint    `json:"from"`
	To         Endpoint    `json:"to"`
	Condition  Condition   `json:"condition"`
	Preference *Preference `json:"preference,omitempty"`
}

// Route is a path found for a single profile together with its evaluation
type Route struct {
	Profile    Profile          `json:"-"`
	Name       string           `json:"profile"`
	Path       Path             `json:"-"`
	Nodes      []NodeID         `json:"nodes"`
	LinkIDs    []string         `json:"link_ids"`
	Cost       float64          `json:"cost"`
	Length     float64          `json:"length"`
	Time       float64          `json:"time"`
	AvgShadow  float64          `json:"avg_shadow"`
	KPI        KPIResult        `json:"kpi"`
	Grade      GradeResult      `json:"grade"`
	Markers    []ObstacleMarker `json:"markers"`
	Candidates int              `json:"candidates,omitempty"`
	// Fallback is set for personal route when detour budget couldn't be satisfied
	Fallback bool `json:"fallback"`
}

// PlanResult holds routes of every requested profile.
// Results are cached and shared, callers must treat them as read-only.
type PlanResult struct {
	From      NodeID    `json:"from"`
	To        NodeID    `json:"to"`
	FromSnap  float64   `json:"from_snap"`
	ToSnap    float64   `json:"to_snap"`
	Condition Condition `json:"condition"`
	Heatwave  bool      `json:"heatwave"`
	Routes    []Route   `json:"routes"`

	net *Network
}

// Network returns annotated request network the routes were found on
func (result *PlanResult) Network() *Network {
	return result.net
}

// Route returns route of the profile
func (result *PlanResult) Route(p Profile) (*Route, bool) {
	for i := range result.Routes {
		if result.Routes[i].Profile == p {
			return &result.Routes[i], true
		}
	}
	return nil, false
}

type planKey struct {
	from, to NodeID
	cond     Condition
	personal bool
	pref     Preference
}

// Planner orchestrates request-scoped annotation, path search and evaluation over shared base network
type Planner struct {
	base          *Network
	nodeIndex     *NodeIndex
	lengthIndex   *LengthIndex
	cache         *lru.Cache[planKey, *PlanResult]
	cacheSize     int
	maxCandidates int
	maxSnap       float64
	enumerators   EnumeratorFactory
	logger        *zap.Logger
	tracer        trace.Tracer
}

func (planner *Planner) String() string {
	return fmt.Sprintf(`
Planner parameters:
	nodes: %d
	links: %d
	cache_size: %d
	max_candidates: %d
	max_snap_distance: %f
	`,
		planner.base.NodesNum(),
		planner.base.LinksNum(),
		planner.cacheSize,
		planner.maxCandidates,
		planner.maxSnap,
	)
}

// WithLogger sets logger for the planner
func WithLogger(logger *zap.Logger) func(*Planner) {
	return func(planner *Planner) {
		if logger != nil {
			planner.logger = logger
		}
	}
}

// WithTracerProvider sets provider planner spans are created with. Global provider is used by default
func WithTracerProvider(provider trace.TracerProvider) func(*Planner) {
	return func(planner *Planner) {
		if provider != nil {
			planner.tracer = provider.Tracer(tracerName)
		}
	}
}

// WithMaxCandidates sets cap on paths examined by constrained search
func WithMaxCandidates(n int) func(*Planner) {
	return func(planner *Planner) {
		if n > 0 {
			planner.maxCandidates = n
		}
	}
}

// WithCacheSize sets number of cached plans. Zero disables caching
func WithCacheSize(n int) func(*Planner) {
	return func(planner *Planner) {
		if n >= 0 {
			planner.cacheSize = n
		}
	}
}

// WithMaxSnapDistance rejects points farther than d from the closest node. Zero means no limit
func WithMaxSnapDistance(d float64) func(*Planner) {
	return func(planner *Planner) {
		if d >= 0 {
			planner.maxSnap = d
		}
	}
}

// WithEnumeratorFactory replaces candidate enumeration strategy of constrained search
func WithEnumeratorFactory(factory EnumeratorFactory) func(*Planner) {
	return func(planner *Planner) {
		if factory != nil {
			planner.enumerators = factory
		}
	}
}

// NewPlanner prepares indices over frozen base network
func NewPlanner(base *Network, options ...func(*Planner)) (*Planner, error) {
	if base == nil || !base.frozen {
		return nil, errors.Wrap(ErrInvalidInput, "planner requires built base network")
	}
	planner := &Planner{
		base:          base,
		cacheSize:     defaultCacheSize,
		maxCandidates: DefaultMaxCandidates,
		enumerators:   YenByLength,
		logger:        zap.NewNop(),
		tracer:        otel.Tracer(tracerName),
	}
	for _, option := range options {
		option(planner)
	}

	var err error
	planner.nodeIndex, err = NewNodeIndex(base)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build node index")
	}
	st := time.Now()
	planner.lengthIndex, err = NewLengthIndex(base)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build length index")
	}
	planner.logger.Info("Contraction hierarchies are prepared", zap.Duration("elapsed", time.Since(st)))
	if planner.cacheSize > 0 {
		planner.cache, err = lru.New[planKey, *PlanResult](planner.cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create plan cache")
		}
	}
	return planner, nil
}

// Base returns shared base network
func (planner *Planner) Base() *Network {
	return planner.base
}

// Nearest resolves planar point to the closest node
func (planner *Planner) Nearest(pt orb.Point) (NodeID, float64, error) {
	return planner.nodeIndex.Nearest(pt)
}

func (planner *Planner) resolve(endpoint Endpoint) (NodeID, float64, error) {
	switch {
	case endpoint.NodeID != nil:
		if _, ok := planner.base.nodes[*endpoint.NodeID]; !ok {
			return 0, 0, invalidInputf("unknown node %d", *endpoint.NodeID)
		}
		return *endpoint.NodeID, 0, nil
	case endpoint.Point != nil:
		id, dist, err := planner.nodeIndex.Nearest(*endpoint.Point)
		if err != nil {
			return 0, 0, err
		}
		if planner.maxSnap > 0 && dist > planner.maxSnap {
			return 0, 0, invalidInputf("point %v is %.1f away from the network", *endpoint.Point, dist)
		}
		return id, dist, nil
	default:
		return 0, 0, invalidInputf("endpoint has neither node nor point")
	}
}

func (planner *Planner) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return planner.tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Plan finds and evaluates routes for shortest, main and cooling profiles, plus personal one when request has preference
func (planner *Planner) Plan(ctx context.Context, req PlanRequest) (result *PlanResult, err error) {
	ctx, span := planner.span(ctx, "planner.plan")
	defer func() { endSpan(span, err) }()

	if err = req.Condition.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad condition")
	}
	if req.Preference != nil {
		if err = req.Preference.Validate(); err != nil {
			return nil, errors.Wrap(err, "Bad preference")
		}
	}
	from, fromSnap, err := planner.resolve(req.From)
	if err != nil {
		return nil, errors.Wrap(err, "Can't resolve origin")
	}
	to, toSnap, err := planner.resolve(req.To)
	if err != nil {
		return nil, errors.Wrap(err, "Can't resolve destination")
	}
	if from == to {
		return nil, invalidInputf("origin and destination resolve to the same node %d", from)
	}
	span.SetAttributes(
		attribute.Int64("from", int64(from)),
		attribute.Int64("to", int64(to)),
		attribute.Int("time_slot", req.Condition.TimeSlot),
		attribute.Bool("personal", req.Preference != nil),
	)

	key := planKey{from: from, to: to, cond: req.Condition}
	if req.Preference != nil {
		key.personal = true
		key.pref = *req.Preference
	}
	if planner.cache != nil {
		if cached, ok := planner.cache.Get(key); ok {
			planner.logger.Debug("Plan cache hit", zap.Int64("from", int64(from)), zap.Int64("to", int64(to)))
			res := *cached
			res.FromSnap, res.ToSnap = fromSnap, toSnap
			return &res, nil
		}
	}

	result, err = planner.plan(ctx, from, to, req)
	if err != nil {
		return nil, err
	}
	result.FromSnap, result.ToSnap = fromSnap, toSnap
	if planner.cache != nil {
		planner.cache.Add(key, result)
	}
	return result, nil
}

func (planner *Planner) plan(ctx context.Context, from, to NodeID, req PlanRequest) (*PlanResult, error) {
	st := time.Now()
	cond := req.Condition
	pref := req.Preference

	_, span := planner.span(ctx, "planner.annotate")
	net := planner.base.Clone()
	err := Annotate(net, cond, pref)
	endSpan(span, err)
	if err != nil {
		return nil, errors.Wrap(err, "Can't annotate request network")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profiles := []Profile{PROFILE_SHORTEST, PROFILE_MAIN, PROFILE_COOLING}
	paths := make(map[Profile]Path, len(Profiles))
	_, span = planner.span(ctx, "planner.solve")
	for _, p := range profiles {
		var path Path
		path, _, err = ShortestPath(net, from, to, ProfileWeight(p))
		if err != nil {
			err = errors.Wrapf(err, "Can't find %s route", p)
			break
		}
		paths[p] = path
	}
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var constrained ConstrainedResult
	if pref != nil {
		_, span = planner.span(ctx, "planner.search")
		constrained, err = planner.searchPersonal(net, from, to, pref)
		endSpan(span, err)
		if err != nil {
			return nil, err
		}
		paths[PROFILE_PERSONAL] = constrained.Path
		profiles = append(profiles, PROFILE_PERSONAL)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	_, span = planner.span(ctx, "planner.evaluate")
	result := &PlanResult{
		From:      from,
		To:        to,
		Condition: cond,
		Heatwave:  IsHeatwave(cond.Temperature),
		Routes:    make([]Route, 0, len(profiles)),
		net:       net,
	}
	reference := paths[PROFILE_SHORTEST]
	for _, p := range profiles {
		var route Route
		route, err = planner.evaluate(net, p, reference, paths[p], cond, pref)
		if err != nil {
			break
		}
		if p == PROFILE_PERSONAL {
			route.Candidates = constrained.Candidates
			route.Fallback = constrained.Fallback
		}
		result.Routes = append(result.Routes, route)
	}
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	planner.logger.Info(
		"Plan is ready",
		zap.Int64("from", int64(from)),
		zap.Int64("to", int64(to)),
		zap.Int("time_slot", cond.TimeSlot),
		zap.Float64("rain_mm", cond.RainMM),
		zap.Int("routes", len(result.Routes)),
		zap.Duration("elapsed", time.Since(st)),
	)
	return result, nil
}

// searchPersonal runs detour-constrained search around the shortest by length path
func (planner *Planner) searchPersonal(net *Network, from, to NodeID, pref *Preference) (ConstrainedResult, error) {
	base, _, err := planner.lengthIndex.ShortestPath(from, to)
	if err != nil {
		return ConstrainedResult{}, errors.Wrap(err, "Can't find personal baseline")
	}
	enumerator, err := planner.enumerators(net, from, to)
	if err != nil {
		return ConstrainedResult{}, errors.Wrap(err, "Can't create candidates enumerator")
	}
	res, err := FindConstrainedBestPath(net, base, enumerator, pref.DetourLimit, planner.maxCandidates)
	if err != nil {
		return ConstrainedResult{}, errors.Wrap(err, "Can't find personal route")
	}
	if res.Fallback {
		planner.logger.Info(
			"No candidate fits detour budget, using baseline",
			zap.Int64("from", int64(from)),
			zap.Int64("to", int64(to)),
			zap.Float64("detour_limit", pref.DetourLimit),
			zap.Int("candidates", res.Candidates),
		)
	}
	return res, nil
}

func (planner *Planner) evaluate(net *Network, p Profile, reference, path Path, cond Condition, pref *Preference) (Route, error) {
	kpi, err := CalculateKPI(net, reference, path, cond)
	if err != nil {
		return Route{}, errors.Wrapf(err, "Can't evaluate %s route", p)
	}
	grade, err := GradeRoute(kpi, p, pref)
	if err != nil {
		return Route{}, errors.Wrapf(err, "Can't grade %s route", p)
	}
	return Route{
		Profile:   p,
		Name:      p.String(),
		Path:      path,
		Nodes:     path.Nodes,
		LinkIDs:   net.PathLinkIDs(path),
		Cost:      net.PathCost(path, p),
		Length:    kpi.Length.Target,
		Time:      kpi.Time.Target,
		AvgShadow: kpi.Shadow.Target,
		KPI:       kpi,
		Grade:     grade,
		Markers:   ObstacleMarkers(net, path),
	}, nil
}
