package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/hozaki45/NEXUS-ENA/internal/analysis"
)

// PDF renders the full weekly report: executive summary, charts, the
// narrative insights, and the regional data appendix. Rendering is
// deterministic given the analysis and insight text.
func PDF(rep *analysis.Report, insights string, charts map[string][]byte, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(0, 0, 96)
	pdf.MultiCell(0, 10, "NEXUS-ENA Weekly Energy Market Report", "", "L", false)
	pdf.Ln(6)

	// Report metadata
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	reportDate := generatedAt.UTC().Format("January 2, 2006")
	pdf.MultiCell(0, 6, fmt.Sprintf("Report Date: %s", reportDate), "", "L", false)
	pdf.MultiCell(0, 6, fmt.Sprintf("Analysis Period: %s (7-day lookback)", reportDate), "", "L", false)
	pdf.Ln(6)

	// Executive summary
	writeHeading(pdf, "Executive Summary")
	if rep.PowerMarkets != nil && rep.PowerMarkets.Summary != nil {
		s := rep.PowerMarkets.Summary
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Average power price: $%.2f/MWh", s.AvgPrice), "", "L", false)
		pdf.MultiCell(0, 6, fmt.Sprintf("Price volatility: %.2f", s.PriceVolatility), "", "L", false)
		pdf.MultiCell(0, 6, fmt.Sprintf("Total demand: %.0f MW", s.TotalDemand), "", "L", false)
		pdf.MultiCell(0, 6, fmt.Sprintf("Total supply: %.0f MW", s.TotalSupply), "", "L", false)
	} else {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, "No power market data available for this period.", "", "L", false)
	}
	pdf.Ln(6)

	// Charts
	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(charts[name]))
		pdf.ImageOptions(name, 15, pdf.GetY(), 180, 0, true, opts, 0, "")
		pdf.Ln(6)
	}

	// Narrative insights
	writeHeading(pdf, "AI-Powered Market Analysis")
	pdf.SetFont("Helvetica", "", 11)
	for _, paragraph := range strings.Split(insights, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		pdf.MultiCell(0, 6, paragraph, "", "L", false)
		pdf.Ln(3)
	}
	pdf.Ln(4)

	// Data appendix
	if rep.PowerMarkets != nil && len(rep.PowerMarkets.Regional) > 0 {
		writeHeading(pdf, "Data Appendix")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, "Regional Power Market Data", "", "L", false)
		writeRegionalTable(pdf, rep.PowerMarkets.Regional)
		pdf.Ln(6)
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Generated by NEXUS-ENA - Energy Nexus Analytics Platform", "", "L", false)
	pdf.MultiCell(0, 5, fmt.Sprintf("Report generated on %s UTC", generatedAt.UTC().Format("2006-01-02 15:04:05")), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 15)
	pdf.SetTextColor(0, 0, 96)
	pdf.MultiCell(0, 8, text, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func writeRegionalTable(pdf *fpdf.Fpdf, regional map[string]analysis.RegionStats) {
	regions := make([]string, 0, len(regional))
	for region := range regional {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	colWidths := []float64{40, 45, 40, 45}
	headers := []string{"Region", "Avg Price ($/MWh)", "Volatility", "Avg Demand (MW)"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)
	for _, region := range regions {
		stats := regional[region]
		cells := []string{
			region,
			fmt.Sprintf("$%.2f", stats.Price.Mean),
			fmt.Sprintf("%.2f", stats.Price.Std),
			fmt.Sprintf("%.0f", stats.AvgDemand),
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 8, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
}
