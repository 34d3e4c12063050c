// Package analyzer orchestrates the weekly analysis run: load the recent
// raw data, run the aggregation passes, generate narrative insights, render
// the artifacts, and upload everything.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hozaki45/NEXUS-ENA/internal/analysis"
	"github.com/hozaki45/NEXUS-ENA/internal/frame"
	"github.com/hozaki45/NEXUS-ENA/internal/insight"
	"github.com/hozaki45/NEXUS-ENA/internal/model"
	"github.com/hozaki45/NEXUS-ENA/internal/report"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
	"github.com/hozaki45/NEXUS-ENA/internal/worker"
)

// analysisSource is the metadata partition the completion record lands in.
const analysisSource = "weekly_analysis"

// Analyzer runs one weekly analysis pass.
type Analyzer struct {
	objects     storage.ObjectStore
	metadata    storage.MetadataStore
	provider    insight.Provider
	environment string
	windowDays  int
	workers     int
	log         zerolog.Logger
	now         func() time.Time
}

// New wires an analyzer from explicit dependencies. The insight provider
// may be nil, in which case the report carries the fallback text.
func New(objects storage.ObjectStore, metadata storage.MetadataStore, provider insight.Provider, environment string, windowDays, workers int, log zerolog.Logger) *Analyzer {
	if windowDays <= 0 {
		windowDays = 7
	}
	if workers <= 0 {
		workers = 4
	}
	return &Analyzer{
		objects:     objects,
		metadata:    metadata,
		provider:    provider,
		environment: environment,
		windowDays:  windowDays,
		workers:     workers,
		log:         log,
		now:         time.Now,
	}
}

// RunSummary reports the outcome of one analysis run.
type RunSummary struct {
	Status            string    `json:"status"`
	Error             string    `json:"error,omitempty"`
	ExecutionSeconds  float64   `json:"execution_time_seconds"`
	DatasetsProcessed []string  `json:"datasets_processed"`
	TotalRecords      int       `json:"total_records_analyzed"`
	Visualizations    int       `json:"visualizations_created"`
	PDFGenerated      bool      `json:"pdf_generated"`
	Timestamp         time.Time `json:"timestamp"`
}

// Run executes the full workflow. A completion record is always written,
// whatever step failed.
func (a *Analyzer) Run(ctx context.Context) (RunSummary, error) {
	start := a.now().UTC()
	a.log.Info().Int("window_days", a.windowDays).Msg("starting weekly analysis")

	datasets, err := a.loadRecentData(ctx)
	if err == nil && len(datasets) == 0 {
		err = errors.New("no data available for analysis")
	}
	if err != nil {
		a.recordCompletion(ctx, false, err.Error())
		return RunSummary{
			Status:    "failed",
			Error:     err.Error(),
			Timestamp: a.now().UTC(),
		}, fmt.Errorf("weekly analysis: %w", err)
	}

	rep := a.analyze(datasets)

	insights := a.generateInsights(ctx, rep)

	charts, err := report.Charts(rep)
	if err != nil {
		a.log.Error().Err(err).Msg("visualization rendering failed")
		charts = nil
	}

	pdf, err := report.PDF(rep, insights, charts, a.now())
	if err != nil {
		a.log.Error().Err(err).Msg("pdf rendering failed")
		pdf = nil
	}

	if err := a.uploadArtifacts(ctx, rep, insights, pdf, charts); err != nil {
		a.recordCompletion(ctx, false, err.Error())
		return RunSummary{
			Status:    "failed",
			Error:     err.Error(),
			Timestamp: a.now().UTC(),
		}, fmt.Errorf("weekly analysis: %w", err)
	}

	a.recordCompletion(ctx, true, "")

	total := 0
	sources := make([]string, 0, len(datasets))
	for source, table := range datasets {
		sources = append(sources, source)
		total += table.Len()
	}

	end := a.now().UTC()
	summary := RunSummary{
		Status:            "success",
		ExecutionSeconds:  end.Sub(start).Seconds(),
		DatasetsProcessed: sources,
		TotalRecords:      total,
		Visualizations:    len(charts),
		PDFGenerated:      len(pdf) > 0,
		Timestamp:         end,
	}
	a.log.Info().
		Int("records", total).
		Float64("seconds", summary.ExecutionSeconds).
		Msg("weekly analysis completed")
	return summary, nil
}

// loadRecentData lists raw objects inside the trailing window, downloads
// them through the worker pool, and combines them per inferred source.
// Objects that fail to download or decode are logged and skipped.
func (a *Analyzer) loadRecentData(ctx context.Context) (map[string]*frame.Table, error) {
	cutoff := a.now().UTC().AddDate(0, 0, -a.windowDays)

	entries, err := a.objects.List(ctx, "raw-data/", 0)
	if err != nil {
		return nil, fmt.Errorf("list raw data: %w", err)
	}

	pool := worker.NewPool(ctx, a.workers)
	pool.Start()

	submitted := 0
	for _, entry := range entries {
		if entry.LastModified.Before(cutoff) {
			continue
		}
		source := sourceFromKey(entry.Key)
		if source == "" {
			continue
		}
		pool.Submit(&worker.DownloadJob{Objects: a.objects, Key: entry.Key, Source: source})
		submitted++
	}

	grouped := make(map[string]*frame.Table)
	for _, res := range pool.Wait() {
		dl := res.(*worker.DownloadResult)
		if dl.Error != nil {
			a.log.Warn().Err(dl.Error).Str("key", dl.Key).Msg("failed to load object")
			continue
		}
		a.log.Info().Str("key", dl.Key).Int("records", dl.Table.Len()).Msg("loaded raw data")
		grouped[dl.Source] = frame.Concat(grouped[dl.Source], dl.Table)
	}

	a.log.Info().Int("objects", submitted).Int("sources", len(grouped)).Msg("recent data loaded")
	return grouped, nil
}

// sourceFromKey infers the source name from the object key: the filename
// segment before the first underscore.
func sourceFromKey(key string) string {
	name := path.Base(key)
	if i := strings.Index(name, "_"); i > 0 {
		return name[:i]
	}
	return ""
}

// analyze runs the three passes over whatever sources the window produced.
func (a *Analyzer) analyze(datasets map[string]*frame.Table) *analysis.Report {
	rep := analysis.NewReport(a.now())

	power := datasets["lseg"]
	if power != nil {
		result, info := analysis.AnalyzePowerMarkets(power)
		rep.PowerMarkets = &result
		rep.Stages["power_markets"] = info
		a.logStage("power_markets", info)
	}

	if weather := datasets["weather"]; weather != nil {
		result, info := analysis.AnalyzeWeatherImpact(weather, power)
		rep.WeatherImpact = &result
		rep.Stages["weather_impact"] = info
		a.logStage("weather_impact", info)
	}

	if economic := datasets["economic"]; economic != nil {
		result, info := analysis.AnalyzeEconomicIndicators(economic)
		rep.EconomicIndicators = &result
		rep.Stages["economic_indicators"] = info
		a.logStage("economic_indicators", info)
	}

	return rep
}

func (a *Analyzer) logStage(name string, info analysis.StageInfo) {
	switch info.Status {
	case analysis.StatusComputed:
		a.log.Info().Str("stage", name).Msg("analysis stage completed")
	case analysis.StatusEmpty:
		a.log.Warn().Str("stage", name).Str("reason", info.Reason).Msg("analysis stage had no data")
	case analysis.StatusFailed:
		a.log.Error().Str("stage", name).Str("reason", info.Reason).Msg("analysis stage failed")
	}
}

// generateInsights requests the narrative summary, substituting the
// fallback text when the provider is missing or errors out.
func (a *Analyzer) generateInsights(ctx context.Context, rep *analysis.Report) string {
	if a.provider == nil {
		return insight.Fallback(errors.New("no insight provider configured"))
	}

	resp, err := a.provider.Generate(ctx, insight.Request{Report: rep})
	if err != nil {
		a.log.Error().Err(err).Msg("insight generation failed")
		return insight.Fallback(err)
	}
	a.log.Info().Str("model", resp.Model).Int("tokens", resp.TokensUsed).Msg("insights generated")
	return resp.Insights
}

// uploadArtifacts stores the JSON result, the PDF, and the charts under
// their timestamped report keys.
func (a *Analyzer) uploadArtifacts(ctx context.Context, rep *analysis.Report, insights string, pdf []byte, charts map[string][]byte) error {
	now := a.now().UTC()
	stamp := now.Format("20060102_150405")

	body, err := report.JSON(rep, insights, a.environment, now)
	if err != nil {
		return err
	}
	jsonKey := fmt.Sprintf("reports/json/weekly_analysis_%s.json", stamp)
	if err := a.objects.Put(ctx, jsonKey, body, "application/json", nil); err != nil {
		return err
	}
	a.log.Info().Str("key", jsonKey).Msg("analysis JSON uploaded")

	if len(pdf) > 0 {
		pdfKey := fmt.Sprintf("reports/pdf/weekly_report_%s.pdf", stamp)
		if err := a.objects.Put(ctx, pdfKey, pdf, "application/pdf", nil); err != nil {
			return err
		}
		a.log.Info().Str("key", pdfKey).Msg("PDF report uploaded")
	}

	for name, png := range charts {
		vizKey := fmt.Sprintf("reports/visualizations/%s_%s.png", name, stamp)
		if err := a.objects.Put(ctx, vizKey, png, "image/png", nil); err != nil {
			return err
		}
		a.log.Info().Str("key", vizKey).Msg("visualization uploaded")
	}
	return nil
}

// recordCompletion writes the run's metadata record, success or not.
func (a *Analyzer) recordCompletion(ctx context.Context, success bool, errorMessage string) {
	rec := model.NewMetadataRecord(analysisSource, a.now(), a.environment)
	rec.Success = success
	rec.AnalysisType = "comprehensive_market_analysis"
	rec.ErrorMessage = errorMessage
	if err := a.metadata.Put(ctx, rec); err != nil {
		a.log.Error().Err(err).Msg("failed to write analysis metadata")
	}
}
