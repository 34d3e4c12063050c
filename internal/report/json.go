package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hozaki45/NEXUS-ENA/internal/analysis"
)

// analysisVersion tags the JSON artifact schema.
const analysisVersion = "1.0.0"

// envelope is the serialized form of one weekly run: raw statistics plus
// the narrative text.
type envelope struct {
	Timestamp    string           `json:"timestamp"`
	AnalysisData *analysis.Report `json:"analysis_data"`
	Insights     string           `json:"insights"`
	Metadata     envelopeMeta     `json:"metadata"`
}

type envelopeMeta struct {
	Environment     string `json:"environment"`
	AnalysisVersion string `json:"analysis_version"`
}

// JSON serializes the analysis and insight text into the weekly artifact.
func JSON(rep *analysis.Report, insights, environment string, at time.Time) ([]byte, error) {
	body, err := json.MarshalIndent(envelope{
		Timestamp:    at.UTC().Format(time.RFC3339),
		AnalysisData: rep,
		Insights:     insights,
		Metadata: envelopeMeta{
			Environment:     environment,
			AnalysisVersion: analysisVersion,
		},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal analysis artifact: %w", err)
	}
	return body, nil
}
