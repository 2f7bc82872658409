package shaderoute

import (
	"math"
)

const (
	// HeatwaveThreshold is temperature from which a heatwave advisory applies
	HeatwaveThreshold = 33.0
)

// Forecast is an hourly sequence of conditions
type Forecast struct {
	Name  string      `json:"name"`
	Hours []Condition `json:"hours"`
}

// FeelsLike is apparent temperature of a single hour under given shade coverage
type FeelsLike struct {
	TimeSlot    int     `json:"time_slot"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	RainMM      float64 `json:"rain_mm"`
	Humidity    float64 `json:"humidity"`
}

// IsHeatwave reports whether temperature reaches heatwave threshold
func IsHeatwave(temperature float64) bool {
	return temperature >= HeatwaveThreshold
}

// At returns condition of the hour. Forecast without that hour falls back to its first hour
func (forecast Forecast) At(timeSlot int) (Condition, error) {
	if len(forecast.Hours) == 0 {
		return Condition{}, invalidInputf("forecast '%s' is empty", forecast.Name)
	}
	for _, cond := range forecast.Hours {
		if cond.TimeSlot == timeSlot {
			return cond, nil
		}
	}
	return forecast.Hours[0], nil
}

// FeelsLikeSeries returns apparent temperature of every forecast hour under given average shade
func (forecast Forecast) FeelsLikeSeries(avgShadow float64) []FeelsLike {
	series := make([]FeelsLike, 0, len(forecast.Hours))
	for _, cond := range forecast.Hours {
		series = append(series, FeelsLike{
			TimeSlot:    cond.TimeSlot,
			Temperature: cond.Temperature,
			FeelsLike:   math.Round(ApparentTemperature(cond.Temperature, avgShadow)*10) / 10,
			RainMM:      cond.RainMM,
			Humidity:    cond.Humidity,
		})
	}
	return series
}

// HeatwaveForecast returns hot dry summer day scenario
func HeatwaveForecast() Forecast {
	temps := []float64{30.0, 32.6, 34.1, 35.0, 36.4, 36.5, 36.7, 38.2, 37.5, 38.1, 36.4, 32.7}
	humidity := []float64{70, 68, 65, 60, 55, 50, 48, 50, 52, 55, 58, 60}
	return buildForecast("heatwave", temps, make([]float64, timeSlotsNum), humidity)
}

// RainForecast returns hot day with afternoon showers scenario
func RainForecast() Forecast {
	temps := []float64{27.8, 29.5, 31.2, 33.0, 34.2, 35.0, 35.6, 35.2, 34.6, 33.8, 32.5, 31.2}
	rain := []float64{0, 0, 0, 1.2, 2.5, 4.0, 6.0, 5.5, 4.0, 3.0, 2.0, 1.0}
	humidity := []float64{75, 78, 80, 85, 88, 90, 92, 93, 90, 88, 85, 82}
	return buildForecast("rain", temps, rain, humidity)
}

// ForecastByName returns demo scenario by its name
func ForecastByName(name string) (Forecast, error) {
	switch name {
	case "heatwave", "hot":
		return HeatwaveForecast(), nil
	case "rain":
		return RainForecast(), nil
	default:
		return Forecast{}, invalidInputf("unknown forecast scenario '%s'", name)
	}
}

func buildForecast(name string, temps, rain, humidity []float64) Forecast {
	forecast := Forecast{
		Name:  name,
		Hours: make([]Condition, timeSlotsNum),
	}
	for i := range forecast.Hours {
		forecast.Hours[i] = Condition{
			TimeSlot:    FirstTimeSlot + i,
			RainMM:      rain[i],
			Temperature: temps[i],
			Humidity:    humidity[i],
		}
	}
	return forecast
}
