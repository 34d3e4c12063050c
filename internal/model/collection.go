package model

import "time"

// CollectionResult is the outcome of processing a single data source.
type CollectionResult struct {
	Source      string `json:"source"`
	Success     bool   `json:"success"`
	RecordCount int    `json:"record_count"`
	FileKey     string `json:"file_key,omitempty"`
	Error       string `json:"error,omitempty"`
}

// CollectionSummary aggregates a full collector run across all sources.
// A run counts as successful when at least one source succeeded.
type CollectionSummary struct {
	Timestamp         time.Time          `json:"timestamp"`
	ExecutionSeconds  float64            `json:"execution_time_seconds"`
	SourcesProcessed  int                `json:"total_sources_processed"`
	SuccessfulSources int                `json:"successful_sources"`
	TotalRecords      int                `json:"total_records_collected"`
	Results           []CollectionResult `json:"results"`
	Bucket            string             `json:"s3_bucket"`
	Environment       string             `json:"environment"`
}

// Success reports whether the run produced data from at least one source.
func (s CollectionSummary) Success() bool {
	return s.SuccessfulSources > 0
}
