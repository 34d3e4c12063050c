package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hozaki45/NEXUS-ENA/internal/collector"
	"github.com/hozaki45/NEXUS-ENA/internal/config"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

var collectTimeout time.Duration

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect data from the configured API sources",
	Long: `Collect pulls market prices, weather, and economic indicators from the
configured data sources, converts each to parquet, uploads it under a
date-partitioned key, and records one metadata entry per source.

Per-source failures are isolated; the run succeeds when at least one
source produced data.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().DurationVar(&collectTimeout, "timeout", 10*time.Minute, "overall collection timeout")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	log := newLogger()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients, err := storage.NewClients(ctx)
	if err != nil {
		return err
	}

	objects := storage.NewS3Store(clients.S3, cfg.Bucket)
	metadata := storage.NewMetadataTable(clients.DynamoDB, cfg.MetadataTable)

	fetchers := []collector.SourceFetcher{
		&collector.PowerMarketSource{},
		&collector.WeatherSource{},
		&collector.EconomicSource{},
	}

	c := collector.NewCollector(objects, metadata, cfg.Bucket, cfg.Environment, collector.DefaultSources(), fetchers, log)
	summary, err := c.Run(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}

	if !summary.Success() {
		return fmt.Errorf("all %d sources failed", summary.SourcesProcessed)
	}
	return nil
}
