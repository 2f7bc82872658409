package shaderoute

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

// OSMConfiguration allows to filter ways by certain tags from OSM data
type OSMConfiguration struct {
	EntityName string // Currently 'highway' only
	Tags       []string
}

// DefaultPedestrianTags are highway values walkable by pedestrians
var DefaultPedestrianTags = []string{
	"footway", "pedestrian", "path", "steps", "living_street", "residential",
	"service", "unclassified", "tertiary", "secondary", "primary", "corridor", "crossing", "track",
}

// NewPedestrianConfiguration returns configuration for pedestrian network
func NewPedestrianConfiguration() *OSMConfiguration {
	tags := make([]string, len(DefaultPedestrianTags))
	copy(tags, DefaultPedestrianTags)
	return &OSMConfiguration{
		EntityName: "highway",
		Tags:       tags,
	}
}

// CheckTag checks if incoming tag is represented in configuration
func (cfg *OSMConfiguration) CheckTag(tag string) bool {
	for i := range cfg.Tags {
		if cfg.Tags[i] == tag {
			return true
		}
	}
	return false
}

// walkable reports whether way is allowed for pedestrians by configuration and access tags
func (cfg *OSMConfiguration) walkable(tags osm.Tags) bool {
	if !cfg.CheckTag(tags.Find(cfg.EntityName)) {
		return false
	}
	switch tags.Find("foot") {
	case "no", "private":
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return tags.Find("foot") == "yes" || tags.Find("foot") == "designated"
	}
	return true
}

// wayFacilities are facility flags derived from tags of a way
type wayFacilities struct {
	tunnel     bool
	footbridge bool
	indoor     bool
	crosswalk  bool
}

var footbridgeHighways = map[string]struct{}{
	"footway":    {},
	"steps":      {},
	"pedestrian": {},
	"path":       {},
}

func facilitiesOfWay(tags osm.Tags) wayFacilities {
	highway := tags.Find("highway")
	facilities := wayFacilities{}
	switch tags.Find("tunnel") {
	case "yes", "building_passage":
		facilities.tunnel = true
	}
	if tags.Find("bridge") == "yes" {
		if _, ok := footbridgeHighways[highway]; ok {
			facilities.footbridge = true
		}
	}
	if tags.Find("footway") == "crossing" || highway == "crossing" {
		facilities.crosswalk = true
	}
	if tags.Find("indoor") == "yes" || highway == "corridor" || belowGround(tags.Find("level")) {
		facilities.indoor = true
	}
	return facilities
}

// belowGround reports whether the lowest of ';' separated levels is negative
func belowGround(level string) bool {
	if level == "" {
		return false
	}
	for _, part := range strings.Split(level, ";") {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			continue
		}
		if value < 0 {
			return true
		}
	}
	return false
}

func isCrossingNode(tags osm.Tags) bool {
	return tags.Find("highway") == "crossing" || tags.Find("railway") == "crossing"
}
