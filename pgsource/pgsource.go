// Package pgsource loads road segments and hourly shadows from PostgreSQL/PostGIS
package pgsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/LdDl/shaderoute"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// Querier is the subset of pgxpool.Pool used by Source
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Source reads datasets from tables of given names
type Source struct {
	db            Querier
	segmentsTable string
	shadowsTable  string
}

// WithSegmentsTable overrides default 'road_segments' table
func WithSegmentsTable(name string) func(*Source) {
	return func(src *Source) {
		src.segmentsTable = name
	}
}

// WithShadowsTable overrides default 'link_shadow_hourly' table
func WithShadowsTable(name string) func(*Source) {
	return func(src *Source) {
		src.shadowsTable = name
	}
}

// New returns source on top of any pgx querier
func New(db Querier, options ...func(*Source)) *Source {
	src := &Source{
		db:            db,
		segmentsTable: "road_segments",
		shadowsTable:  "link_shadow_hourly",
	}
	for _, option := range options {
		option(src)
	}
	return src
}

// Connect opens connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "Can't ping database")
	}
	return pool, nil
}

func (src *Source) segmentsQuery() string {
	return fmt.Sprintf(`
		SELECT u, v, link_id::text, length, ST_AsText(geometry),
			COALESCE(tunnel, false), COALESCE(footbridge, false),
			COALESCE(indoor, false), COALESCE(crosswalk, false)
		FROM %s
		ORDER BY link_id
	`, pgx.Identifier(strings.Split(src.segmentsTable, ".")).Sanitize())
}

func (src *Source) shadowsQuery() string {
	return fmt.Sprintf(`
		SELECT link_id::text, time_slot, shadow_ratio
		FROM %s
	`, pgx.Identifier(strings.Split(src.shadowsTable, ".")).Sanitize())
}

// LoadSegments reads every road segment
func (src *Source) LoadSegments(ctx context.Context) ([]shaderoute.SegmentRecord, error) {
	rows, err := src.db.Query(ctx, src.segmentsQuery())
	if err != nil {
		return nil, errors.Wrap(err, "Can't query segments")
	}
	defer rows.Close()

	segments := []shaderoute.SegmentRecord{}
	for rows.Next() {
		var (
			seg     shaderoute.SegmentRecord
			geomWKT string
		)
		err := rows.Scan(&seg.U, &seg.V, &seg.LinkID, &seg.Length, &geomWKT, &seg.Tunnel, &seg.Footbridge, &seg.Indoor, &seg.Crosswalk)
		if err != nil {
			return nil, errors.Wrap(err, "Can't scan segment row")
		}
		seg.Geometry, err = parseGeometry(geomWKT)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse geometry of link '%s'", seg.LinkID)
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't iterate segments")
	}
	return segments, nil
}

// LoadShadows reads every hourly shadow row
func (src *Source) LoadShadows(ctx context.Context) ([]shaderoute.ShadowRecord, error) {
	rows, err := src.db.Query(ctx, src.shadowsQuery())
	if err != nil {
		return nil, errors.Wrap(err, "Can't query shadows")
	}
	defer rows.Close()

	shadows := []shaderoute.ShadowRecord{}
	for rows.Next() {
		var (
			shadow shaderoute.ShadowRecord
			slot   int32
		)
		err := rows.Scan(&shadow.LinkID, &slot, &shadow.ShadowRatio)
		if err != nil {
			return nil, errors.Wrap(err, "Can't scan shadow row")
		}
		shadow.TimeSlot = int(slot)
		shadows = append(shadows, shadow)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't iterate shadows")
	}
	return shadows, nil
}

// LoadNetwork reads both datasets and builds base network
func (src *Source) LoadNetwork(ctx context.Context, builder *shaderoute.NetworkBuilder) (*shaderoute.Network, error) {
	segments, err := src.LoadSegments(ctx)
	if err != nil {
		return nil, err
	}
	shadows, err := src.LoadShadows(ctx)
	if err != nil {
		return nil, err
	}
	if builder == nil {
		builder = shaderoute.NewNetworkBuilder()
	}
	return builder.Build(segments, shadows)
}

// parseGeometry accepts LINESTRING and single-part MULTILINESTRING, which PostGIS often stores after merges
func parseGeometry(s string) (orb.LineString, error) {
	geom, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, err
	}
	switch g := geom.(type) {
	case orb.LineString:
		return g, nil
	case orb.MultiLineString:
		if len(g) != 1 {
			return nil, errors.Errorf("multilinestring with %d parts", len(g))
		}
		return g[0], nil
	default:
		return nil, errors.Errorf("unexpected geometry type '%s'", geom.GeoJSONType())
	}
}
