package analysis

import (
	"github.com/hozaki45/NEXUS-ENA/internal/frame"
)

// extremeTempQuantile is the percentile above which a temperature reading
// is flagged as an extreme event.
const extremeTempQuantile = 0.95

// weatherRegionMap translates weather region names to market region codes.
var weatherRegionMap = map[string]string{
	"New York":     "NYISO",
	"California":   "CAISO",
	"Texas":        "ERCOT",
	"Pennsylvania": "PJM",
}

// ExtremeEvent is one temperature reading above the extreme threshold.
type ExtremeEvent struct {
	Region      string  `json:"region"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// WeatherImpactAnalysis is the weather-impact pass output.
type WeatherImpactAnalysis struct {
	TemperatureImpact map[string]float64 `json:"temperature_impact,omitempty"`
	ExtremeEvents     []ExtremeEvent     `json:"extreme_weather_events,omitempty"`
}

// AnalyzeWeatherImpact correlates temperature with power prices per mapped
// region and flags extreme temperature events. The correlation is computed
// only when a region's weather and price sample counts align exactly; there
// is no time-based join.
func AnalyzeWeatherImpact(weather, power *frame.Table) (WeatherImpactAnalysis, StageInfo) {
	out := WeatherImpactAnalysis{}

	if weather == nil || weather.Len() == 0 || power == nil || power.Len() == 0 {
		return out, empty("no weather or power data")
	}

	prices := power.Filter(func(row map[string]any) bool {
		return row["data_type"] == "power_prices"
	})

	out.TemperatureImpact = make(map[string]float64)
	for name, code := range weatherRegionMap {
		regionWeather := weather.Filter(func(row map[string]any) bool {
			return row["region"] == name
		})
		regionPower := prices.Filter(func(row map[string]any) bool {
			return row["region"] == code
		})
		if regionWeather.Len() == 0 || regionPower.Len() == 0 {
			continue
		}
		if regionWeather.Len() != regionPower.Len() {
			continue
		}
		out.TemperatureImpact[code] = correlation(
			regionWeather.Floats("temperature"),
			regionPower.Floats("price"),
		)
	}

	// Extreme events: readings above the 95th percentile of the window.
	temps := weather.Floats("temperature")
	threshold := quantile(temps, extremeTempQuantile)
	for i := 0; i < weather.Len(); i++ {
		row := weather.Row(i)
		temp, ok := frame.AsFloat(row["temperature"])
		if !ok || temp <= threshold {
			continue
		}
		wind, _ := frame.AsFloat(row["wind_speed"])
		region, _ := row["region"].(string)
		ts, _ := row["timestamp"].(string)
		out.ExtremeEvents = append(out.ExtremeEvents, ExtremeEvent{
			Region:      region,
			Temperature: temp,
			WindSpeed:   wind,
			Timestamp:   ts,
		})
	}

	return out, computed()
}
