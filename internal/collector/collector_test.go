package collector

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hozaki45/NEXUS-ENA/internal/frame"
	"github.com/hozaki45/NEXUS-ENA/internal/model"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

// fakeObjectStore records puts in memory.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		meta:    make(map[string]map[string]string),
	}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, body []byte, contentType string, metadata map[string]string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
	f.meta[key] = metadata
	return nil
}

func (f *fakeObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return body, nil
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string, limit int) ([]storage.ObjectEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ObjectEntry
	for key, body := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectEntry{Key: key, Size: int64(len(body))})
		}
	}
	return out, nil
}

func (f *fakeObjectStore) Head(ctx context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.meta[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return meta, nil
}

func (f *fakeObjectStore) HealthCheck(ctx context.Context) error { return nil }

// fakeMetadataStore collects records in order.
type fakeMetadataStore struct {
	mu      sync.Mutex
	records []model.MetadataRecord
}

func (f *fakeMetadataStore) Put(ctx context.Context, rec model.MetadataRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeMetadataStore) QueryRecent(ctx context.Context, source string, limit int) ([]model.MetadataRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.MetadataRecord
	for i := len(f.records) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if f.records[i].DataSource == source {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeMetadataStore) ScanSince(ctx context.Context, cutoff time.Time, limit int) ([]model.MetadataRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.MetadataRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeMetadataStore) HealthCheck(ctx context.Context) error { return nil }

// fakeFetcher returns a canned table or error.
type fakeFetcher struct {
	name  string
	table *frame.Table
	err   error
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context) (*frame.Table, error) {
	return f.table, f.err
}

func smallTable(rows int) *frame.Table {
	t := frame.New("region", "price")
	for i := 0; i < rows; i++ {
		t.Append(map[string]any{"region": "PJM", "price": 45.50})
	}
	return t
}

func testSpecs(names ...string) []SourceSpec {
	specs := make([]SourceSpec, 0, len(names))
	for _, n := range names {
		specs = append(specs, SourceSpec{Name: n, Enabled: true, RatePerMin: 6000, Timeout: time.Second})
	}
	return specs
}

func newTestCollector(objects storage.ObjectStore, metadata storage.MetadataStore, specs []SourceSpec, fetchers []SourceFetcher) *Collector {
	c := NewCollector(objects, metadata, "test-bucket", "test", specs, fetchers, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2026, 8, 24, 12, 30, 45, 0, time.UTC) }
	return c
}

func TestCollectorRunAllSourcesSucceed(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := &fakeMetadataStore{}
	c := newTestCollector(objects, metadata, testSpecs("lseg", "weather"), []SourceFetcher{
		&fakeFetcher{name: "lseg", table: smallTable(7)},
		&fakeFetcher{name: "weather", table: smallTable(4)},
	})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Success() {
		t.Fatal("summary should report success")
	}
	if summary.SuccessfulSources != 2 || summary.SourcesProcessed != 2 {
		t.Errorf("successful=%d processed=%d, want 2/2", summary.SuccessfulSources, summary.SourcesProcessed)
	}
	if summary.TotalRecords != 11 {
		t.Errorf("TotalRecords = %d, want 11", summary.TotalRecords)
	}

	if len(objects.objects) != 2 {
		t.Errorf("stored %d objects, want 2", len(objects.objects))
	}
	for key := range objects.objects {
		if !strings.HasPrefix(key, "raw-data/year=2026/month=08/day=24/") {
			t.Errorf("unexpected partition key %q", key)
		}
		if !strings.HasSuffix(key, ".parquet") {
			t.Errorf("key %q missing parquet suffix", key)
		}
	}

	if len(metadata.records) != 2 {
		t.Fatalf("wrote %d metadata records, want 2", len(metadata.records))
	}
	for _, rec := range metadata.records {
		if !rec.Success {
			t.Errorf("record for %s not marked successful", rec.DataSource)
		}
		if rec.FileKey == "" || rec.DataHash == "" {
			t.Errorf("record for %s missing file key or hash", rec.DataSource)
		}
		if rec.TTL == 0 {
			t.Errorf("record for %s missing TTL", rec.DataSource)
		}
	}
}

func TestCollectorPartialFailure(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := &fakeMetadataStore{}
	c := newTestCollector(objects, metadata, testSpecs("lseg", "weather", "economic"), []SourceFetcher{
		&fakeFetcher{name: "lseg", table: smallTable(3)},
		&fakeFetcher{name: "weather", err: errors.New("upstream timeout")},
		&fakeFetcher{name: "economic", table: smallTable(6)},
	})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Success() {
		t.Fatal("partial failure should still count as success")
	}
	if summary.SuccessfulSources != 2 {
		t.Errorf("SuccessfulSources = %d, want 2", summary.SuccessfulSources)
	}

	var failed *model.MetadataRecord
	for i := range metadata.records {
		if metadata.records[i].DataSource == "weather" {
			failed = &metadata.records[i]
		}
	}
	if failed == nil {
		t.Fatal("no metadata record for the failed source")
	}
	if failed.Success {
		t.Error("failed source recorded as success")
	}
	if failed.ErrorMessage != "upstream timeout" {
		t.Errorf("ErrorMessage = %q", failed.ErrorMessage)
	}
	if failed.FileKey != "" {
		t.Errorf("failure record carries file key %q", failed.FileKey)
	}
}

func TestCollectorEmptyFetchIsFailure(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := &fakeMetadataStore{}
	c := newTestCollector(objects, metadata, testSpecs("lseg"), []SourceFetcher{
		&fakeFetcher{name: "lseg", table: frame.New("region")},
	})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Success() {
		t.Fatal("empty fetch should not count as success")
	}
	if len(objects.objects) != 0 {
		t.Errorf("empty fetch stored %d objects", len(objects.objects))
	}
	if len(metadata.records) != 1 {
		t.Fatalf("wrote %d records, want 1", len(metadata.records))
	}
	rec := metadata.records[0]
	if rec.Success || !strings.Contains(rec.ErrorMessage, "no data collected") {
		t.Errorf("record = %+v", rec)
	}
}

func TestCollectorUnknownSource(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := &fakeMetadataStore{}
	c := newTestCollector(objects, metadata, testSpecs("mystery"), nil)

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Success() {
		t.Fatal("unknown source should not succeed")
	}
	if len(metadata.records) != 1 || !strings.Contains(metadata.records[0].ErrorMessage, "unknown data source") {
		t.Errorf("records = %+v", metadata.records)
	}
}

func TestCollectorSkipsDisabledSources(t *testing.T) {
	objects := newFakeObjectStore()
	metadata := &fakeMetadataStore{}
	specs := []SourceSpec{
		{Name: "lseg", Enabled: true, RatePerMin: 6000, Timeout: time.Second},
		{Name: "weather", Enabled: false, RatePerMin: 6000, Timeout: time.Second},
	}
	c := newTestCollector(objects, metadata, specs, []SourceFetcher{
		&fakeFetcher{name: "lseg", table: smallTable(1)},
		&fakeFetcher{name: "weather", table: smallTable(1)},
	})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SourcesProcessed != 1 {
		t.Errorf("SourcesProcessed = %d, want 1", summary.SourcesProcessed)
	}
}

func TestPartitionKey(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 3, 7, 0, time.UTC)
	got := PartitionKey("lseg", at)
	want := "raw-data/year=2026/month=01/day=05/lseg_20260105_090307.parquet"
	if got != want {
		t.Errorf("PartitionKey = %q, want %q", got, want)
	}
}

func TestDataHashStable(t *testing.T) {
	a := DataHash("lseg", "2026-08-24T12:30:45Z", 7)
	b := DataHash("lseg", "2026-08-24T12:30:45Z", 7)
	if a != b {
		t.Error("hash not deterministic")
	}
	if len(a) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(a))
	}
	if c := DataHash("lseg", "2026-08-24T12:30:45Z", 8); c == a {
		t.Error("different record counts should differ")
	}
}
