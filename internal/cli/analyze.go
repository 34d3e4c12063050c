package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hozaki45/NEXUS-ENA/internal/analyzer"
	"github.com/hozaki45/NEXUS-ENA/internal/config"
	"github.com/hozaki45/NEXUS-ENA/internal/insight"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

var (
	analyzeTimeout time.Duration
	windowDays     int
	noInsights     bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the weekly market analysis",
	Long: `Analyze loads the raw data collected inside the trailing window,
computes market, weather, and economic aggregates, requests narrative
insights from the configured language model, renders charts and a PDF
report, and uploads all artifacts.

A completion record is written whatever the outcome.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 30*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().IntVar(&windowDays, "window-days", 0, "trailing data window in days (default from config)")
	analyzeCmd.Flags().BoolVar(&noInsights, "no-insights", false, "skip LLM insight generation")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	log := newLogger()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if windowDays > 0 {
		cfg.Analyzer.WindowDays = windowDays
	}

	clients, err := storage.NewClients(ctx)
	if err != nil {
		return err
	}

	objects := storage.NewS3Store(clients.S3, cfg.Bucket)
	metadata := storage.NewMetadataTable(clients.DynamoDB, cfg.MetadataTable)
	params := storage.NewSSMParameters(clients.SSM)

	var provider insight.Provider
	if !noInsights {
		provider, err = buildInsightProvider(ctx, cfg, params)
		if err != nil {
			// An unusable provider must not block the weekly run; the
			// report falls back to the error text instead.
			log.Error().Err(err).Msg("insight provider unavailable")
			provider = nil
		}
	}

	a := analyzer.New(objects, metadata, provider, cfg.Environment,
		cfg.Analyzer.WindowDays, cfg.Analyzer.DownloadWorkers, log)

	summary, err := a.Run(ctx)
	if encErr := json.NewEncoder(os.Stdout).Encode(summary); encErr != nil {
		log.Error().Err(encErr).Msg("failed to print run summary")
	}
	return err
}

// buildInsightProvider resolves the API key from the parameter store and
// constructs the configured provider.
func buildInsightProvider(ctx context.Context, cfg *config.Config, params storage.ParameterStore) (insight.Provider, error) {
	apiKey, err := params.Get(ctx, cfg.Insight.APIKeyParameter)
	if err != nil {
		return nil, err
	}

	return insight.NewProvider(insight.Config{
		Provider:  cfg.Insight.Provider,
		Model:     cfg.Insight.Model,
		APIKey:    apiKey,
		Timeout:   cfg.Insight.TimeoutSeconds,
		MaxTokens: cfg.Insight.MaxTokens,
	})
}
