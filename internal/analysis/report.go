package analysis

import "time"

// Report bundles the three pass outputs for one weekly run. Failed stages
// keep their empty shape in the serialized form; Stages records what
// actually happened to each pass.
type Report struct {
	PowerMarkets       *PowerMarketAnalysis   `json:"power_markets,omitempty"`
	WeatherImpact      *WeatherImpactAnalysis `json:"weather_impact,omitempty"`
	EconomicIndicators *EconomicAnalysis      `json:"economic_indicators,omitempty"`

	Stages    map[string]StageInfo `json:"stages"`
	Timestamp time.Time            `json:"analysis_timestamp"`
}

// NewReport creates an empty report stamped with the given time.
func NewReport(at time.Time) *Report {
	return &Report{
		Stages:    make(map[string]StageInfo),
		Timestamp: at.UTC(),
	}
}
