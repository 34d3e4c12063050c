// Package collector implements the scheduled data-collection jobs: the
// API data collector pulling from the configured market, weather, and
// economic sources, and the SFTP collector pulling vendor files.
package collector

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hozaki45/NEXUS-ENA/internal/frame"
	"github.com/hozaki45/NEXUS-ENA/internal/model"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

// SourceFetcher fetches one data source into tabular form. Real API
// clients and the placeholder fetchers both sit behind this interface.
type SourceFetcher interface {
	// Name is the source identifier used in object keys and metadata.
	Name() string

	// Fetch returns the source's current data. A nil or empty table means
	// the source had nothing to offer.
	Fetch(ctx context.Context) (*frame.Table, error)
}

// SourceSpec carries the per-source collection policy.
type SourceSpec struct {
	Name        string
	DisplayName string
	Enabled     bool
	RatePerMin  int
	Timeout     time.Duration
}

// DefaultSources returns the three configured data sources.
func DefaultSources() []SourceSpec {
	return []SourceSpec{
		{Name: "lseg", DisplayName: "LSEG Power Markets", Enabled: true, RatePerMin: 100, Timeout: 30 * time.Second},
		{Name: "weather", DisplayName: "Weather Data", Enabled: true, RatePerMin: 1000, Timeout: 10 * time.Second},
		{Name: "economic", DisplayName: "Economic Indicators", Enabled: true, RatePerMin: 100, Timeout: 30 * time.Second},
	}
}

// Collector runs one collection pass over all enabled sources. Per-source
// failures are isolated: one source failing does not stop the others.
type Collector struct {
	objects     storage.ObjectStore
	metadata    storage.MetadataStore
	bucket      string
	environment string
	specs       []SourceSpec
	fetchers    map[string]SourceFetcher
	limiters    map[string]*rate.Limiter
	log         zerolog.Logger
	now         func() time.Time
}

// NewCollector wires a collector from explicit dependencies.
func NewCollector(objects storage.ObjectStore, metadata storage.MetadataStore, bucket, environment string, specs []SourceSpec, fetchers []SourceFetcher, log zerolog.Logger) *Collector {
	byName := make(map[string]SourceFetcher, len(fetchers))
	for _, f := range fetchers {
		byName[f.Name()] = f
	}
	limiters := make(map[string]*rate.Limiter, len(specs))
	for _, spec := range specs {
		limiters[spec.Name] = rate.NewLimiter(rate.Limit(float64(spec.RatePerMin)/60.0), 1)
	}
	return &Collector{
		objects:     objects,
		metadata:    metadata,
		bucket:      bucket,
		environment: environment,
		specs:       specs,
		fetchers:    byName,
		limiters:    limiters,
		log:         log,
		now:         time.Now,
	}
}

// Run processes every enabled source and aggregates the outcome. The
// returned summary reports partial success when at least one source
// succeeded; the error is non-nil only when the run could not start.
func (c *Collector) Run(ctx context.Context) (model.CollectionSummary, error) {
	start := c.now().UTC()
	c.log.Info().Time("start", start).Msg("starting data collection")

	summary := model.CollectionSummary{
		Bucket:      c.bucket,
		Environment: c.environment,
	}

	for _, spec := range c.specs {
		if !spec.Enabled {
			continue
		}
		c.log.Info().Str("source", spec.Name).Msg("processing data source")

		result := c.processSource(ctx, spec)
		summary.Results = append(summary.Results, result)
		summary.SourcesProcessed++
		if result.Success {
			summary.SuccessfulSources++
			summary.TotalRecords += result.RecordCount
		} else {
			c.log.Error().Str("source", spec.Name).Str("error", result.Error).Msg("source collection failed")
		}
	}

	end := c.now().UTC()
	summary.Timestamp = end
	summary.ExecutionSeconds = end.Sub(start).Seconds()

	c.log.Info().
		Int("successful_sources", summary.SuccessfulSources).
		Int("total_records", summary.TotalRecords).
		Float64("seconds", summary.ExecutionSeconds).
		Msg("collection completed")

	return summary, nil
}

// processSource fetches, uploads, and records one source. Every failure
// path writes a failure metadata record with no object key.
func (c *Collector) processSource(ctx context.Context, spec SourceSpec) model.CollectionResult {
	result := model.CollectionResult{Source: spec.Name}

	fetcher, ok := c.fetchers[spec.Name]
	if !ok {
		result.Error = fmt.Sprintf("unknown data source: %s", spec.Name)
		c.recordFailure(ctx, spec.Name, result.Error)
		return result
	}

	if limiter := c.limiters[spec.Name]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			result.Error = fmt.Sprintf("rate limit wait: %v", err)
			c.recordFailure(ctx, spec.Name, result.Error)
			return result
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	table, err := fetcher.Fetch(fetchCtx)
	if err != nil {
		result.Error = err.Error()
		c.recordFailure(ctx, spec.Name, result.Error)
		return result
	}
	if table == nil || table.Len() == 0 {
		result.Error = fmt.Sprintf("no data collected from %s", spec.Name)
		c.recordFailure(ctx, spec.Name, result.Error)
		return result
	}

	fileKey, err := c.upload(ctx, table, spec.Name)
	if err != nil {
		result.Error = err.Error()
		c.recordFailure(ctx, spec.Name, result.Error)
		return result
	}

	// Object first, metadata second. A crash between the two leaves an
	// object with no record rather than a record pointing nowhere.
	c.recordSuccess(ctx, spec.Name, fileKey, table.Len())

	result.Success = true
	result.RecordCount = table.Len()
	result.FileKey = fileKey
	c.log.Info().Str("source", spec.Name).Int("records", table.Len()).Str("key", fileKey).Msg("source collected")
	return result
}

// upload converts the table to parquet and stores it under a
// date-partitioned key with descriptive metadata.
func (c *Collector) upload(ctx context.Context, table *frame.Table, source string) (string, error) {
	now := c.now().UTC()
	key := PartitionKey(source, now)

	body, err := table.MarshalParquet()
	if err != nil {
		return "", fmt.Errorf("encode %s parquet: %w", source, err)
	}

	metadata := map[string]string{
		"data_source":     source,
		"record_count":    fmt.Sprintf("%d", table.Len()),
		"collection_time": now.Format(time.RFC3339),
		"environment":     c.environment,
	}
	if err := c.objects.Put(ctx, key, body, "application/octet-stream", metadata); err != nil {
		return "", err
	}
	return key, nil
}

func (c *Collector) recordSuccess(ctx context.Context, source, fileKey string, count int) {
	rec := model.NewMetadataRecord(source, c.now(), c.environment)
	rec.Success = true
	rec.RecordCount = count
	rec.FileKey = fileKey
	rec.DataHash = DataHash(source, rec.Timestamp, count)
	if err := c.metadata.Put(ctx, rec); err != nil {
		c.log.Error().Err(err).Str("source", source).Msg("metadata update failed")
	}
}

func (c *Collector) recordFailure(ctx context.Context, source, message string) {
	rec := model.NewMetadataRecord(source, c.now(), c.environment)
	rec.Success = false
	rec.ErrorMessage = message
	if err := c.metadata.Put(ctx, rec); err != nil {
		c.log.Error().Err(err).Str("source", source).Msg("metadata update failed")
	}
}

// PartitionKey builds the date-partitioned object key for one collection.
func PartitionKey(source string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("raw-data/year=%04d/month=%02d/day=%02d/%s_%s.parquet",
		at.Year(), at.Month(), at.Day(), source, at.Format("20060102_150405"))
}

// DataHash derives the coarse integrity fingerprint stored with each
// record. It is not cryptographically meaningful.
func DataHash(source, timestamp string, count int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%d", source, timestamp, count)))
	return hex.EncodeToString(sum[:])
}
