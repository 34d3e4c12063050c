package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hozaki45/NEXUS-ENA/internal/model"
)

// sourceStatus summarizes one data source's recent collection history.
type sourceStatus struct {
	Name         string `json:"name"`
	LastSuccess  string `json:"last_success,omitempty"`
	LastAttempt  string `json:"last_attempt,omitempty"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
	TotalRecords int    `json:"total_records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dynamoHealthy := s.metadata.HealthCheck(ctx) == nil
	s3Healthy := s.objects.HealthCheck(ctx) == nil
	healthy := dynamoHealthy && s3Healthy

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": healthLabel(healthy),
		"services": map[string]string{
			"dynamodb": healthLabel(dynamoHealthy),
			"s3":       healthLabel(s3Healthy),
		},
		"timestamp":   s.now().UTC().Format(time.RFC3339),
		"environment": s.environment,
		"version":     apiVersion,
	})
}

func healthLabel(ok bool) string {
	if ok {
		return "healthy"
	}
	return "unhealthy"
}

func (s *Server) handleDataSources(w http.ResponseWriter, r *http.Request) {
	cutoff := s.now().UTC().AddDate(0, 0, -7)
	records, err := s.metadata.ScanSince(r.Context(), cutoff, 100)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve data sources status", err)
		return
	}

	byName := make(map[string]*sourceStatus)
	var order []string
	for _, rec := range records {
		status, ok := byName[rec.DataSource]
		if !ok {
			status = &sourceStatus{Name: rec.DataSource}
			byName[rec.DataSource] = status
			order = append(order, rec.DataSource)
		}
		if rec.Success {
			status.SuccessCount++
			status.TotalRecords += rec.RecordCount
			if rec.Timestamp > status.LastSuccess {
				status.LastSuccess = rec.Timestamp
			}
		} else {
			status.FailureCount++
		}
		if rec.Timestamp > status.LastAttempt {
			status.LastAttempt = rec.Timestamp
		}
	}

	sources := make([]sourceStatus, 0, len(order))
	for _, name := range order {
		sources = append(sources, *byName[name])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data_sources":  sources,
		"total_sources": len(sources),
		"timestamp":     s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	cutoff := s.now().UTC().Add(-24 * time.Hour)
	records, err := s.metadata.ScanSince(r.Context(), cutoff, 0)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve dashboard summary", err)
		return
	}

	total := len(records)
	successful := 0
	totalRecords := 0
	sources := make(map[string]bool)
	for _, rec := range records {
		if rec.Success {
			successful++
		}
		totalRecords += rec.RecordCount
		sources[rec.DataSource] = true
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(successful) / float64(total) * 100
	}

	sourceNames := make([]string, 0, len(sources))
	for name := range sources {
		sourceNames = append(sourceNames, name)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": map[string]any{
			"total_collections_24h":      total,
			"successful_collections_24h": successful,
			"success_rate_percentage":    roundRate(successRate),
			"total_records_24h":          totalRecords,
			"active_data_sources":        len(sources),
			"data_sources":               sourceNames,
		},
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"period":    "24 hours",
	})
}

func roundRate(rate float64) float64 {
	return float64(int(rate*100+0.5)) / 100
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	limit := queryInt(r, "limit", 50)

	records, err := s.metadata.QueryRecent(r.Context(), source, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve recent data for "+source, err)
		return
	}

	type recentEntry struct {
		Timestamp   string `json:"timestamp"`
		Success     bool   `json:"success"`
		RecordCount int    `json:"record_count"`
		FileKey     string `json:"file_key,omitempty"`
		DataHash    string `json:"data_hash,omitempty"`
	}

	recent := make([]recentEntry, 0, len(records))
	for _, rec := range records {
		recent = append(recent, recentEntry{
			Timestamp:   rec.Timestamp,
			Success:     rec.Success,
			RecordCount: rec.RecordCount,
			FileKey:     rec.FileKey,
			DataHash:    rec.DataHash,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data_source":        source,
		"recent_collections": recent,
		"count":              len(recent),
		"timestamp":          s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	limit := queryInt(r, "limit", 20)

	entries, err := s.objects.List(r.Context(), prefix, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to retrieve files", err)
		return
	}

	files := make([]model.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		info := model.ObjectInfo{
			Key:            entry.Key,
			Size:           entry.Size,
			LastModified:   entry.LastModified,
			DataSource:     "unknown",
			RecordCount:    "unknown",
			CollectionTime: "unknown",
		}
		metadata, err := s.objects.Head(r.Context(), entry.Key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", entry.Key).Msg("failed to get object metadata")
		} else {
			if v := metadata["data_source"]; v != "" {
				info.DataSource = v
			}
			if v := metadata["record_count"]; v != "" {
				info.RecordCount = v
			}
			if v := metadata["collection_time"]; v != "" {
				info.CollectionTime = v
			}
		}
		files = append(files, info)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"files":     files,
		"count":     len(files),
		"bucket":    s.bucket,
		"prefix":    prefix,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// queryInt parses a positive query parameter, clamped so the value stays
// representable in the stores' 32-bit limit fields.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
