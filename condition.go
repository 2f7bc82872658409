package shaderoute

import (
	"math"
)

// Condition is weather and time context of a single request
type Condition struct {
	TimeSlot    int     `json:"time_slot"`
	RainMM      float64 `json:"rain_mm"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Validate checks that condition values are in their domains
func (cond Condition) Validate() error {
	if cond.TimeSlot < FirstTimeSlot || cond.TimeSlot > LastTimeSlot {
		return invalidInputf("time slot %d is out of [%d, %d]", cond.TimeSlot, FirstTimeSlot, LastTimeSlot)
	}
	if math.IsNaN(cond.RainMM) || math.IsInf(cond.RainMM, 0) || cond.RainMM < 0 {
		return invalidInputf("rain %f mm is negative or not a number", cond.RainMM)
	}
	if math.IsNaN(cond.Temperature) || math.IsInf(cond.Temperature, 0) {
		return invalidInputf("temperature is not a number")
	}
	if math.IsNaN(cond.Humidity) || cond.Humidity < 0 || cond.Humidity > 100 {
		return invalidInputf("humidity %f is out of [0, 100]", cond.Humidity)
	}
	return nil
}

// rainPenalty returns profile independent surcharge for precipitation amount
func rainPenalty(rainMM float64) float64 {
	switch {
	case rainMM >= 3:
		return 0.6
	case rainMM >= 1:
		return 0.3
	default:
		return 0.0
	}
}

// rainTimeFactor returns walking time multiplier for precipitation amount
func rainTimeFactor(rainMM float64) float64 {
	switch {
	case rainMM >= 3:
		return 1.15
	case rainMM >= 1:
		return 1.08
	default:
		return 1.0
	}
}
