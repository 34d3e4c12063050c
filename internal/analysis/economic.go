package analysis

import (
	"github.com/hozaki45/NEXUS-ENA/internal/frame"
)

// energyCommodities are the indicators singled out for the commodity trend
// view.
var energyCommodities = []string{"crude_oil_wti", "natural_gas_henry_hub", "coal_price"}

// EconomicAnalysis is the economic-indicators pass output.
type EconomicAnalysis struct {
	MarketIndicators map[string]Stats              `json:"market_indicators,omitempty"`
	CommodityTrends  map[string]Stats              `json:"commodity_trends,omitempty"`
	Correlations     map[string]map[string]float64 `json:"correlations,omitempty"`
}

// AnalyzeEconomicIndicators computes per-indicator aggregates, the energy
// commodity subset, and the pairwise correlation matrix across indicators.
// The computation is deterministic: identical input yields an identical
// matrix.
func AnalyzeEconomicIndicators(data *frame.Table) (EconomicAnalysis, StageInfo) {
	out := EconomicAnalysis{}

	if data == nil || data.Len() == 0 {
		return out, empty("no economic data")
	}

	indicators := data.Distinct("indicator")
	if len(indicators) == 0 {
		return out, empty("no indicator column")
	}

	series := make(map[string][]float64, len(indicators))
	out.MarketIndicators = make(map[string]Stats, len(indicators))
	for _, name := range indicators {
		rows := data.Filter(func(row map[string]any) bool {
			return row["indicator"] == name
		})
		values := rows.Floats("value")
		series[name] = values
		out.MarketIndicators[name] = roundStats(describe(values))
	}

	// Energy commodity subset.
	out.CommodityTrends = make(map[string]Stats)
	for _, name := range energyCommodities {
		if stats, ok := out.MarketIndicators[name]; ok {
			out.CommodityTrends[name] = stats
		}
	}
	if len(out.CommodityTrends) == 0 {
		out.CommodityTrends = nil
	}

	// Pairwise correlation matrix, wide. Series are aligned by observation
	// order and truncated to the shorter length of each pair.
	if len(indicators) > 1 {
		out.Correlations = make(map[string]map[string]float64, len(indicators))
		for _, a := range indicators {
			row := make(map[string]float64, len(indicators))
			for _, b := range indicators {
				if a == b {
					row[b] = 1
					continue
				}
				xs, ys := alignPair(series[a], series[b])
				row[b] = round3(correlation(xs, ys))
			}
			out.Correlations[a] = row
		}
	}

	return out, computed()
}

// alignPair truncates both series to their common length.
func alignPair(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	return xs[:n], ys[:n]
}
