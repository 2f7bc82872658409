package shaderoute

import (
	"github.com/pkg/errors"
)

const (
	// BaseWalkingSpeed is walking speed in meters per second
	BaseWalkingSpeed = 1.2
	// ShadowCoolingDegrees is apparent temperature drop under full shade
	ShadowCoolingDegrees = 5.0

	crosswalkWaitSeconds = 30.0
	footbridgeSeconds    = 20.0
)

// HumidityClass is an ordinal comfort bucket of relative humidity
type HumidityClass uint16

const (
	HUMIDITY_COMFORTABLE = HumidityClass(iota + 1)
	HUMIDITY_MODERATE
	HUMIDITY_HIGH
	HUMIDITY_VERY_HIGH
)

func (iotaIdx HumidityClass) String() string {
	return [...]string{"comfortable", "moderate", "high", "very_high"}[iotaIdx-1]
}

// Score returns discomfort score in 0..3
func (iotaIdx HumidityClass) Score() int {
	return int(iotaIdx) - 1
}

// ClassifyHumidity returns comfort class of relative humidity
func ClassifyHumidity(humidity float64) HumidityClass {
	switch {
	case humidity >= 85:
		return HUMIDITY_VERY_HIGH
	case humidity >= 75:
		return HUMIDITY_HIGH
	case humidity >= 65:
		return HUMIDITY_MODERATE
	default:
		return HUMIDITY_COMFORTABLE
	}
}

// LengthKPI compares path lengths in meters
type LengthKPI struct {
	Shortest    float64 `json:"shortest"`
	Target      float64 `json:"target"`
	DetourRatio float64 `json:"detour_ratio"`
}

// TimeKPI compares walking times in seconds
type TimeKPI struct {
	Shortest  float64 `json:"shortest"`
	Target    float64 `json:"target"`
	TimeRatio float64 `json:"time_ratio"`
}

// ShadowKPI compares length-weighted average shadow ratios
type ShadowKPI struct {
	Shortest float64 `json:"shortest"`
	Target   float64 `json:"target"`
	Gain     float64 `json:"gain"`
}

// TemperatureKPI compares apparent temperatures. Negative Diff means target is cooler
type TemperatureKPI struct {
	Shortest float64 `json:"shortest"`
	Target   float64 `json:"target"`
	Diff     float64 `json:"diff"`
}

// HumidityKPI describes humidity comfort
type HumidityKPI struct {
	Value float64       `json:"value"`
	Score int           `json:"score"`
	Class HumidityClass `json:"-"`
	Label string        `json:"label"`
}

// ObstacleTally counts links with each facility along a path
type ObstacleTally struct {
	Crosswalk  int `json:"crosswalk"`
	Footbridge int `json:"footbridge"`
	Tunnel     int `json:"tunnel"`
	Indoor     int `json:"indoor"`
}

// KPIResult compares target path against reference shortest path
type KPIResult struct {
	Length      LengthKPI      `json:"length"`
	Time        TimeKPI        `json:"time"`
	Shadow      ShadowKPI      `json:"shadow"`
	Temperature TemperatureKPI `json:"temperature"`
	Humidity    HumidityKPI    `json:"humidity"`
	Obstacles   ObstacleTally  `json:"obstacles"`
}

// LinkWalkingTime returns seconds needed to walk the link under given precipitation
func LinkWalkingTime(link *NetworkLink, rainMM float64) float64 {
	seconds := link.lengthMeters / BaseWalkingSpeed
	indoorSeconds, _ := indoorPenalty(link)
	seconds += indoorSeconds
	if link.crosswalk {
		seconds += crosswalkWaitSeconds
	}
	if link.footbridge {
		seconds += footbridgeSeconds
	}
	return seconds * rainTimeFactor(rainMM)
}

// PathTime returns walking time of the path in seconds
func (net *Network) PathTime(path Path, rainMM float64) float64 {
	total := 0.0
	for _, idx := range path.Links {
		total += LinkWalkingTime(&net.links[idx], rainMM)
	}
	return total
}

// AverageShadow returns length-weighted average of request-scoped shadow ratio along the path
func (net *Network) AverageShadow(path Path) float64 {
	totalLength := 0.0
	weighted := 0.0
	for _, idx := range path.Links {
		link := &net.links[idx]
		totalLength += link.lengthMeters
		weighted += link.lengthMeters * link.shadowRatio
	}
	if totalLength <= 0 {
		return 0
	}
	return weighted / totalLength
}

// CountObstacles tallies facilities along the path
func (net *Network) CountObstacles(path Path) ObstacleTally {
	tally := ObstacleTally{}
	for _, idx := range path.Links {
		link := &net.links[idx]
		if link.crosswalk {
			tally.Crosswalk++
		}
		if link.footbridge {
			tally.Footbridge++
		}
		if link.tunnel {
			tally.Tunnel++
		}
		if link.indoor {
			tally.Indoor++
		}
	}
	return tally
}

// ApparentTemperature returns temperature felt under the given shade coverage
func ApparentTemperature(temperature, avgShadow float64) float64 {
	return temperature - avgShadow*ShadowCoolingDegrees
}

// CalculateKPI compares target path against reference path on annotated network
func CalculateKPI(net *Network, reference, target Path, cond Condition) (KPIResult, error) {
	if !net.annotated {
		return KPIResult{}, errors.Wrap(ErrInvalidInput, "network is not annotated")
	}
	if reference.Empty() || target.Empty() {
		return KPIResult{}, invalidInputf("empty path")
	}
	kpi := KPIResult{}

	kpi.Length.Shortest = net.PathLength(reference)
	kpi.Length.Target = net.PathLength(target)
	if kpi.Length.Shortest <= 0 {
		return KPIResult{}, errors.Wrap(ErrDegenerateMetric, "reference path has zero length")
	}
	kpi.Length.DetourRatio = (kpi.Length.Target - kpi.Length.Shortest) / kpi.Length.Shortest

	kpi.Time.Shortest = net.PathTime(reference, cond.RainMM)
	kpi.Time.Target = net.PathTime(target, cond.RainMM)
	if kpi.Time.Shortest <= 0 {
		return KPIResult{}, errors.Wrap(ErrDegenerateMetric, "reference path has zero walking time")
	}
	kpi.Time.TimeRatio = (kpi.Time.Target - kpi.Time.Shortest) / kpi.Time.Shortest

	kpi.Shadow.Shortest = net.AverageShadow(reference)
	kpi.Shadow.Target = net.AverageShadow(target)
	kpi.Shadow.Gain = kpi.Shadow.Target - kpi.Shadow.Shortest

	kpi.Temperature.Shortest = ApparentTemperature(cond.Temperature, kpi.Shadow.Shortest)
	kpi.Temperature.Target = ApparentTemperature(cond.Temperature, kpi.Shadow.Target)
	kpi.Temperature.Diff = kpi.Temperature.Target - kpi.Temperature.Shortest

	class := ClassifyHumidity(cond.Humidity)
	kpi.Humidity = HumidityKPI{
		Value: cond.Humidity,
		Score: class.Score(),
		Class: class,
		Label: class.String(),
	}

	kpi.Obstacles = net.CountObstacles(target)
	return kpi, nil
}
