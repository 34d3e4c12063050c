package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hozaki45/NEXUS-ENA/internal/analysis"
)

func sampleReport() *analysis.Report {
	rep := analysis.NewReport(time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC))
	rep.PowerMarkets = &analysis.PowerMarketAnalysis{
		Summary: &analysis.MarketSummary{
			AvgPrice:    48.9,
			MinPrice:    45.5,
			MaxPrice:    52.3,
			TotalDemand: 127000,
			TotalSupply: 135000,
		},
		Regional: map[string]analysis.RegionStats{
			"PJM":   {Price: analysis.Stats{Mean: 45.5, Min: 45.5, Max: 45.5}, AvgDemand: 85000, AvgSupply: 90000},
			"CAISO": {Price: analysis.Stats{Mean: 52.3, Min: 52.3, Max: 52.3}, AvgDemand: 42000, AvgSupply: 45000},
		},
	}
	rep.EconomicIndicators = &analysis.EconomicAnalysis{
		MarketIndicators: map[string]analysis.Stats{
			"crude_oil_wti":         {Mean: 82.45, Min: 80, Max: 85},
			"natural_gas_henry_hub": {Mean: 3.85, Min: 3.5, Max: 4.1},
		},
	}
	rep.Stages["power_markets"] = analysis.StageInfo{Status: analysis.StatusComputed}
	return rep
}

func TestChartsRendersExpectedArtifacts(t *testing.T) {
	charts, err := Charts(sampleReport())
	if err != nil {
		t.Fatalf("Charts: %v", err)
	}
	for _, name := range []string{"power_market_analysis", "economic_indicators"} {
		png, ok := charts[name]
		if !ok {
			t.Errorf("missing chart %s", name)
			continue
		}
		if !bytes.HasPrefix(png, []byte("\x89PNG")) {
			t.Errorf("chart %s is not a PNG", name)
		}
	}
}

func TestChartsOmitsMissingInputs(t *testing.T) {
	rep := analysis.NewReport(time.Now())
	charts, err := Charts(rep)
	if err != nil {
		t.Fatalf("Charts: %v", err)
	}
	if len(charts) != 0 {
		t.Errorf("empty report produced %d charts", len(charts))
	}
}

func TestPDFRendersWithInsights(t *testing.T) {
	rep := sampleReport()
	charts, err := Charts(rep)
	if err != nil {
		t.Fatalf("Charts: %v", err)
	}

	insights := "Markets were tight this week.\n\nSupply margins narrowed across PJM."
	pdfBytes, err := PDF(rep, insights, charts, time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestPDFToleratesEmptyReport(t *testing.T) {
	rep := analysis.NewReport(time.Now())
	pdfBytes, err := PDF(rep, "AI analysis unavailable due to technical issues. Error: boom", nil, time.Now())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if len(pdfBytes) == 0 {
		t.Fatal("empty PDF output")
	}
}

func TestJSONEnvelope(t *testing.T) {
	rep := sampleReport()
	at := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	body, err := JSON(rep, "weekly commentary", "prod", at)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if decoded["timestamp"] != "2026-08-24T06:00:00Z" {
		t.Errorf("timestamp = %v", decoded["timestamp"])
	}
	if decoded["insights"] != "weekly commentary" {
		t.Errorf("insights = %v", decoded["insights"])
	}
	meta, _ := decoded["metadata"].(map[string]any)
	if meta["environment"] != "prod" || meta["analysis_version"] != "1.0.0" {
		t.Errorf("metadata = %v", meta)
	}
	if !strings.Contains(string(body), "analysis_data") {
		t.Error("envelope missing analysis_data")
	}
}
