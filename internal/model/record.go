package model

import "time"

// MetadataTTL is how long collection records live in the metadata store
// before the storage layer expires them.
const MetadataTTL = 90 * 24 * time.Hour

// MetadataRecord is one entry per collection or analysis attempt. Records
// are append-only: the application never updates or deletes them, expiry is
// handled by the store's TTL attribute.
type MetadataRecord struct {
	DataSource   string `json:"data_source" dynamodbav:"data_source"`
	Timestamp    string `json:"timestamp" dynamodbav:"timestamp"`
	Success      bool   `json:"success" dynamodbav:"success"`
	RecordCount  int    `json:"record_count" dynamodbav:"record_count"`
	FileKey      string `json:"file_key,omitempty" dynamodbav:"file_key,omitempty"`
	DataHash     string `json:"data_hash,omitempty" dynamodbav:"data_hash,omitempty"`
	ErrorMessage string `json:"error_message,omitempty" dynamodbav:"error_message,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty" dynamodbav:"analysis_type,omitempty"`
	Environment  string `json:"environment" dynamodbav:"environment"`
	TTL          int64  `json:"ttl" dynamodbav:"ttl"`
}

// NewMetadataRecord builds a record keyed by source and the given moment,
// with the standard TTL applied.
func NewMetadataRecord(source string, at time.Time, environment string) MetadataRecord {
	return MetadataRecord{
		DataSource:  source,
		Timestamp:   at.UTC().Format(time.RFC3339),
		Environment: environment,
		TTL:         at.Add(MetadataTTL).Unix(),
	}
}

// ObjectInfo describes one stored raw-data or report object, combined from
// the listing entry and the object's descriptive tags.
type ObjectInfo struct {
	Key            string    `json:"key"`
	Size           int64     `json:"size"`
	LastModified   time.Time `json:"last_modified"`
	DataSource     string    `json:"data_source"`
	RecordCount    string    `json:"record_count"`
	CollectionTime string    `json:"collection_time"`
}
