package shaderoute

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// SegmentRecord is a single row of road-segment dataset
type SegmentRecord struct {
	U          int64
	V          int64
	LinkID     string
	Length     float64
	Geometry   orb.LineString
	Tunnel     bool
	Footbridge bool
	Indoor     bool
	Crosswalk  bool
}

// ShadowRecord is a single row of hourly shadow dataset
type ShadowRecord struct {
	LinkID      string
	TimeSlot    int
	ShadowRatio float64
}

var (
	segmentColumns = []string{"u", "v", "link_id", "length", "geometry"}
	shadowColumns  = []string{"link_id", "time_slot", "shadow_ratio"}
)

// CSVOptions tunes dataset readers
type CSVOptions struct {
	comma rune
}

// WithDelimiter sets field delimiter for dataset readers. Default is ','
func WithDelimiter(comma rune) func(*CSVOptions) {
	return func(opts *CSVOptions) {
		opts.comma = comma
	}
}

func newDatasetReader(r io.Reader, options ...func(*CSVOptions)) *csv.Reader {
	opts := CSVOptions{comma: ','}
	for _, option := range options {
		option(&opts)
	}
	reader := csv.NewReader(r)
	reader.Comma = opts.comma
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	return reader
}

// csvError marks malformed rows as invalid input and keeps I/O errors as is
func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return invalidInputf("%s", perr.Error())
	}
	return err
}

// readHeader returns column positions. Every required column must be present
func readHeader(reader *csv.Reader, required []string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, invalidInputf("empty dataset")
		}
		return nil, errors.Wrap(err, "Can't read header")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Excel and pandas may prepend BOM to the first column
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, invalidInputf("missing required column '%s'", name)
		}
	}
	return columns, nil
}

// ReadSegmentsCSV reads road-segment dataset. Geometry is expected as WKT LINESTRING
func ReadSegmentsCSV(r io.Reader, options ...func(*CSVOptions)) ([]SegmentRecord, error) {
	reader := newDatasetReader(r, options...)
	columns, err := readHeader(reader, segmentColumns)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read segments header")
	}
	segments := []SegmentRecord{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(csvError(err), "Can't read segment at line %d", line)
		}
		seg, err := parseSegment(record, columns)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse segment at line %d", line)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(record []string, columns map[string]int) (SegmentRecord, error) {
	seg := SegmentRecord{}
	var err error
	seg.U, err = parseNodeID(record[columns["u"]])
	if err != nil {
		return seg, errors.Wrap(err, "Can't parse 'u'")
	}
	seg.V, err = parseNodeID(record[columns["v"]])
	if err != nil {
		return seg, errors.Wrap(err, "Can't parse 'v'")
	}
	seg.LinkID = strings.TrimSpace(record[columns["link_id"]])
	seg.Length, err = strconv.ParseFloat(strings.TrimSpace(record[columns["length"]]), 64)
	if err != nil {
		return seg, invalidInputf("bad length '%s'", record[columns["length"]])
	}
	seg.Geometry, err = wkt.UnmarshalLineString(strings.TrimSpace(record[columns["geometry"]]))
	if err != nil {
		return seg, invalidInputf("bad geometry for link '%s': %s", seg.LinkID, err.Error())
	}
	flags := []struct {
		column string
		dst    *bool
	}{
		{"tunnel", &seg.Tunnel},
		{"footbridge", &seg.Footbridge},
		{"indoor", &seg.Indoor},
		{"crosswalk", &seg.Crosswalk},
	}
	for _, flag := range flags {
		idx, ok := columns[flag.column]
		if !ok {
			continue
		}
		*flag.dst, err = parseFlag(record[idx])
		if err != nil {
			return seg, errors.Wrapf(err, "Can't parse '%s'", flag.column)
		}
	}
	return seg, nil
}

// parseNodeID accepts both integer and integral float notation, e.g. '42' and '42.0'
func parseNodeID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return id, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != float64(int64(f)) {
		return 0, invalidInputf("bad node id '%s'", s)
	}
	return int64(f), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "0.0", "false", "no", "f", "n":
		return false, nil
	case "1", "1.0", "true", "yes", "t", "y":
		return true, nil
	default:
		return false, invalidInputf("bad flag value '%s'", s)
	}
}

// ReadShadowsCSV reads hourly shadow dataset
func ReadShadowsCSV(r io.Reader, options ...func(*CSVOptions)) ([]ShadowRecord, error) {
	reader := newDatasetReader(r, options...)
	columns, err := readHeader(reader, shadowColumns)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read shadows header")
	}
	shadows := []ShadowRecord{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(csvError(err), "Can't read shadow at line %d", line)
		}
		shadow := ShadowRecord{
			LinkID: strings.TrimSpace(record[columns["link_id"]]),
		}
		slot, err := parseNodeID(record[columns["time_slot"]])
		if err != nil {
			return nil, errors.Wrapf(invalidInputf("bad time_slot '%s'", record[columns["time_slot"]]), "Can't parse shadow at line %d", line)
		}
		shadow.TimeSlot = int(slot)
		shadow.ShadowRatio, err = strconv.ParseFloat(strings.TrimSpace(record[columns["shadow_ratio"]]), 64)
		if err != nil {
			return nil, errors.Wrapf(invalidInputf("bad shadow_ratio '%s'", record[columns["shadow_ratio"]]), "Can't parse shadow at line %d", line)
		}
		shadows = append(shadows, shadow)
	}
	return shadows, nil
}
