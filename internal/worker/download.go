package worker

import (
	"context"

	"github.com/hozaki45/NEXUS-ENA/internal/frame"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

// DownloadJob fetches one raw-data object and decodes it into a table.
type DownloadJob struct {
	Objects storage.ObjectStore
	Key     string
	Source  string
}

// Execute implements Job.
func (j *DownloadJob) Execute(ctx context.Context) Result {
	body, err := j.Objects.Get(ctx, j.Key)
	if err != nil {
		return &DownloadResult{Key: j.Key, Source: j.Source, Error: err}
	}

	table, err := frame.UnmarshalParquet(body)
	if err != nil {
		return &DownloadResult{Key: j.Key, Source: j.Source, Error: err}
	}

	return &DownloadResult{Key: j.Key, Source: j.Source, Table: table}
}

// DownloadResult is the outcome of one object download.
type DownloadResult struct {
	Key    string
	Source string
	Table  *frame.Table
	Error  error
}

// GetError implements Result.
func (r *DownloadResult) GetError() error {
	return r.Error
}
