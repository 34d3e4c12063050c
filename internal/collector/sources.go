package collector

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/hozaki45/NEXUS-ENA/internal/frame"
)

// The placeholder fetchers below stand in for the real vendor integrations
// and produce deterministic data shaped like the live feeds. Swapping in a
// real client only requires another SourceFetcher implementation.

// PowerMarketSource produces regional power prices and renewable
// generation figures tagged by data_type.
type PowerMarketSource struct {
	Now func() time.Time
}

// Name implements SourceFetcher.
func (s *PowerMarketSource) Name() string { return "lseg" }

// Fetch implements SourceFetcher.
func (s *PowerMarketSource) Fetch(ctx context.Context) (*frame.Table, error) {
	ts := s.timestamp()

	table := frame.New("region", "price", "demand", "supply", "source", "capacity", "generation", "timestamp", "data_type")
	prices := []struct {
		region string
		price  float64
		demand float64
		supply float64
	}{
		{"PJM", 45.50, 85000, 90000},
		{"CAISO", 52.30, 42000, 45000},
		{"ERCOT", 38.75, 68000, 72000},
		{"NYISO", 48.90, 25000, 27000},
	}
	for _, p := range prices {
		table.Append(map[string]any{
			"region": p.region, "price": p.price, "demand": p.demand, "supply": p.supply,
			"timestamp": ts, "data_type": "power_prices",
		})
	}

	renewables := []struct {
		source     string
		capacity   float64
		generation float64
	}{
		{"wind", 15000, 12500},
		{"solar", 8000, 6800},
		{"hydro", 5000, 4500},
	}
	for _, r := range renewables {
		table.Append(map[string]any{
			"source": r.source, "capacity": r.capacity, "generation": r.generation,
			"timestamp": ts, "data_type": "renewable_generation",
		})
	}
	return table, nil
}

func (s *PowerMarketSource) timestamp() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// WeatherSource produces readings for the regions that drive energy demand.
type WeatherSource struct {
	Now func() time.Time
}

// Name implements SourceFetcher.
func (s *WeatherSource) Name() string { return "weather" }

// Fetch implements SourceFetcher.
func (s *WeatherSource) Fetch(ctx context.Context) (*frame.Table, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC().Format(time.RFC3339)

	regions := []string{"New York", "California", "Texas", "Pennsylvania"}
	table := frame.New("region", "temperature", "humidity", "wind_speed", "cloud_cover", "timestamp")
	for _, region := range regions {
		h := regionSeed(region)
		table.Append(map[string]any{
			"region":      region,
			"temperature": 72.5 + float64(h%20) - 10,
			"humidity":    float64(65 + h%30),
			"wind_speed":  8.5 + float64(h%15),
			"cloud_cover": float64(40 + h%60),
			"timestamp":   ts,
		})
	}
	return table, nil
}

// regionSeed derives a stable per-region perturbation for the placeholder
// readings.
func regionSeed(region string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(region))
	return int(h.Sum32() % 1000)
}

// EconomicSource produces the tracked economic indicators.
type EconomicSource struct {
	Now func() time.Time
}

// Name implements SourceFetcher.
func (s *EconomicSource) Name() string { return "economic" }

// Fetch implements SourceFetcher.
func (s *EconomicSource) Fetch(ctx context.Context) (*frame.Table, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().UTC().Format(time.RFC3339)

	indicators := []struct {
		name  string
		value float64
		unit  string
	}{
		{"crude_oil_wti", 82.45, "USD/barrel"},
		{"natural_gas_henry_hub", 3.85, "USD/MMBtu"},
		{"coal_price", 165.30, "USD/ton"},
		{"carbon_credits", 28.75, "USD/ton_CO2"},
		{"usd_index", 102.8, "index"},
		{"inflation_rate", 3.2, "percent"},
	}

	table := frame.New("indicator", "value", "unit", "timestamp")
	for _, ind := range indicators {
		table.Append(map[string]any{
			"indicator": ind.name, "value": ind.value, "unit": ind.unit, "timestamp": ts,
		})
	}
	return table, nil
}
