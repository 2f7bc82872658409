package shaderoute

// Facility is a pedestrian facility a link may carry
type Facility uint16

const (
	FACILITY_CROSSWALK = Facility(iota + 1)
	FACILITY_FOOTBRIDGE
	FACILITY_TUNNEL
	FACILITY_INDOOR
)

func (iotaIdx Facility) String() string {
	return [...]string{"crosswalk", "footbridge", "tunnel", "indoor"}[iotaIdx-1]
}

// IndoorType classifies indoor links by the friction they add to a walk
type IndoorType uint16

const (
	INDOOR_NONE = IndoorType(iota + 1)
	INDOOR_SEMI
	INDOOR_STATION
)

func (iotaIdx IndoorType) String() string {
	return [...]string{"none", "semi_indoor", "station_or_underground"}[iotaIdx-1]
}

const (
	// Indoor links at least this long are treated as stations or underground passages
	stationMinLength = 60.0

	stationFatigue = 0.6
	stationSeconds = 40.0
	semiFatigue    = 0.1
	semiSeconds    = 8.0
)

// classifyIndoor returns indoor type for link
func classifyIndoor(link *NetworkLink) IndoorType {
	if !link.indoor {
		return INDOOR_NONE
	}
	if link.lengthMeters >= stationMinLength {
		return INDOOR_STATION
	}
	return INDOOR_SEMI
}

// indoorPenalty returns extra walking seconds and fatigue penalty of link
func indoorPenalty(link *NetworkLink) (float64, float64) {
	switch classifyIndoor(link) {
	case INDOOR_STATION:
		return stationSeconds, stationFatigue
	case INDOOR_SEMI:
		return semiSeconds, semiFatigue
	default:
		return 0, 0
	}
}
