// Package report renders the weekly analysis into charts, a PDF report,
// and a JSON artifact.
package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/hozaki45/NEXUS-ENA/internal/analysis"
)

// Charts renders the visualizations the analysis supports. The returned map
// is keyed by artifact name (without extension); charts whose inputs are
// missing are simply omitted.
func Charts(rep *analysis.Report) (map[string][]byte, error) {
	out := make(map[string][]byte)

	if rep.PowerMarkets != nil && len(rep.PowerMarkets.Regional) > 0 {
		png, err := regionalPriceChart(rep.PowerMarkets.Regional)
		if err != nil {
			return nil, fmt.Errorf("render power market chart: %w", err)
		}
		out["power_market_analysis"] = png
	}

	if rep.EconomicIndicators != nil && len(rep.EconomicIndicators.MarketIndicators) > 0 {
		png, err := indicatorChart(rep.EconomicIndicators.MarketIndicators)
		if err != nil {
			return nil, fmt.Errorf("render economic indicators chart: %w", err)
		}
		out["economic_indicators"] = png
	}

	return out, nil
}

// regionalPriceChart draws average price per region with the region's price
// volatility noted in the label.
func regionalPriceChart(regional map[string]analysis.RegionStats) ([]byte, error) {
	regions := make([]string, 0, len(regional))
	for region := range regional {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	bars := make([]chart.Value, 0, len(regions))
	for _, region := range regions {
		stats := regional[region]
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s ($%.2f)", region, stats.Price.Mean),
			Value: stats.Price.Mean,
		})
	}

	bc := chart.BarChart{
		Title:    "Regional Power Market Analysis",
		Width:    1024,
		Height:   640,
		BarWidth: 80,
		Background: chart.Style{
			Padding: chart.Box{Top: 48},
		},
		YAxis: chart.YAxis{
			Name: "Average Price ($/MWh)",
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// indicatorChart draws the mean value of each economic indicator.
func indicatorChart(indicators map[string]analysis.Stats) ([]byte, error) {
	names := make([]string, 0, len(indicators))
	for name := range indicators {
		names = append(names, name)
	}
	sort.Strings(names)

	bars := make([]chart.Value, 0, len(names))
	for _, name := range names {
		bars = append(bars, chart.Value{
			Label: name,
			Value: indicators[name].Mean,
		})
	}

	bc := chart.BarChart{
		Title:    "Economic Indicators Overview",
		Width:    1024,
		Height:   512,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 48},
		},
		YAxis: chart.YAxis{
			Name: "Value",
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
