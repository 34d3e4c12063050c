package analysis

import (
	"fmt"

	"github.com/hozaki45/NEXUS-ENA/internal/frame"
)

// tightMarketRatio is the supply/demand ratio below which a region is
// flagged as a tight market.
const tightMarketRatio = 1.1

// MarketSummary aggregates prices, demand, and supply across all regions.
type MarketSummary struct {
	AvgPrice        float64 `json:"avg_price"`
	PriceVolatility float64 `json:"price_volatility"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	TotalDemand     float64 `json:"total_demand"`
	TotalSupply     float64 `json:"total_supply"`
}

// RegionStats holds the per-region aggregates.
type RegionStats struct {
	Price     Stats   `json:"price"`
	AvgDemand float64 `json:"avg_demand"`
	AvgSupply float64 `json:"avg_supply"`
}

// SupplyDemand reports the balance across regions and which ones are tight.
type SupplyDemand struct {
	AvgRatio     float64  `json:"avg_ratio"`
	TightMarkets []string `json:"tight_markets"`
}

// RenewableStats holds the per-energy-source generation aggregates.
type RenewableStats struct {
	AvgCapacity    float64 `json:"avg_capacity"`
	AvgGeneration  float64 `json:"avg_generation"`
	CapacityFactor float64 `json:"capacity_factor"`
}

// PowerMarketAnalysis is the market-price pass output.
type PowerMarketAnalysis struct {
	Summary         *MarketSummary            `json:"summary,omitempty"`
	Regional        map[string]RegionStats    `json:"regional_analysis,omitempty"`
	PriceVolatility map[string]float64        `json:"price_volatility,omitempty"`
	SupplyDemand    *SupplyDemand             `json:"supply_demand,omitempty"`
	Renewable       map[string]RenewableStats `json:"renewable_analysis,omitempty"`
}

// AnalyzePowerMarkets runs the market-price pass: global and per-region
// price/demand/supply aggregates, price-change volatility, supply/demand
// tightness, and renewable capacity factors.
func AnalyzePowerMarkets(data *frame.Table) (PowerMarketAnalysis, StageInfo) {
	out := PowerMarketAnalysis{}

	if data == nil || data.Len() == 0 {
		return out, empty("no power market data")
	}

	prices := data.Filter(func(row map[string]any) bool {
		return row["data_type"] == "power_prices"
	})
	renewables := data.Filter(func(row map[string]any) bool {
		return row["data_type"] == "renewable_generation"
	})

	if prices.Len() > 0 {
		if err := analyzePrices(prices, &out); err != nil {
			return PowerMarketAnalysis{}, failed(err.Error())
		}
	}
	if renewables.Len() > 0 {
		analyzeRenewables(renewables, &out)
	}

	if out.Summary == nil && out.Renewable == nil {
		return out, empty("no power price or renewable rows")
	}
	return out, computed()
}

func analyzePrices(prices *frame.Table, out *PowerMarketAnalysis) error {
	priceVals := prices.Floats("price")
	demandVals := prices.Floats("demand")
	supplyVals := prices.Floats("supply")

	priceStats := describe(priceVals)
	summary := &MarketSummary{
		AvgPrice:        priceStats.Mean,
		PriceVolatility: priceStats.Std,
		MinPrice:        priceStats.Min,
		MaxPrice:        priceStats.Max,
	}
	for _, d := range demandVals {
		summary.TotalDemand += d
	}
	for _, s := range supplyVals {
		summary.TotalSupply += s
	}
	out.Summary = summary

	// Per-region aggregates and price-change volatility.
	out.Regional = make(map[string]RegionStats)
	out.PriceVolatility = make(map[string]float64)
	for _, region := range prices.Distinct("region") {
		rows := prices.Filter(func(row map[string]any) bool {
			return row["region"] == region
		})
		regionPrices := rows.Floats("price")
		stats := RegionStats{
			Price:     roundStats(describe(regionPrices)),
			AvgDemand: round2(describe(rows.Floats("demand")).Mean),
			AvgSupply: round2(describe(rows.Floats("supply")).Mean),
		}
		out.Regional[region] = stats

		changes := pctChanges(regionPrices)
		if len(changes) > 1 {
			out.PriceVolatility[region] = describe(changes).Std
		} else {
			out.PriceVolatility[region] = 0
		}
	}

	// Supply-demand balance.
	sd := &SupplyDemand{}
	var ratioSum float64
	ratioCount := 0
	tight := make(map[string]bool)
	for i := 0; i < prices.Len(); i++ {
		row := prices.Row(i)
		demand, okD := frame.AsFloat(row["demand"])
		supply, okS := frame.AsFloat(row["supply"])
		if !okD || !okS || demand == 0 {
			return fmt.Errorf("malformed supply/demand row %d", i)
		}
		ratio := supply / demand
		ratioSum += ratio
		ratioCount++
		if ratio < tightMarketRatio {
			region, _ := row["region"].(string)
			tight[region] = true
		}
	}
	if ratioCount > 0 {
		sd.AvgRatio = ratioSum / float64(ratioCount)
	}
	for _, region := range prices.Distinct("region") {
		if tight[region] {
			sd.TightMarkets = append(sd.TightMarkets, region)
		}
	}
	out.SupplyDemand = sd
	return nil
}

func analyzeRenewables(renewables *frame.Table, out *PowerMarketAnalysis) {
	out.Renewable = make(map[string]RenewableStats)
	for _, source := range renewables.Distinct("source") {
		rows := renewables.Filter(func(row map[string]any) bool {
			return row["source"] == source
		})
		capacity := describe(rows.Floats("capacity")).Mean
		generation := describe(rows.Floats("generation")).Mean

		stats := RenewableStats{
			AvgCapacity:   round2(capacity),
			AvgGeneration: round2(generation),
		}
		if capacity > 0 {
			stats.CapacityFactor = generation / capacity
		}
		out.Renewable[source] = stats
	}
}

func roundStats(s Stats) Stats {
	return Stats{
		Mean: round2(s.Mean),
		Std:  round2(s.Std),
		Min:  round2(s.Min),
		Max:  round2(s.Max),
	}
}
