package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
	"github.com/JakeFAU/contract-extractor/internal/executor"
	pubmem "github.com/JakeFAU/contract-extractor/internal/publisher/memory"
	"github.com/JakeFAU/contract-extractor/internal/reader"
	srcmem "github.com/JakeFAU/contract-extractor/internal/source/memory"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStubClock() *stubClock {
	return &stubClock{now: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return nil
}

type stubIDGen struct{ id string }

func (g stubIDGen) NewID() (string, error) { return g.id, nil }

type stubExtractor struct {
	mu    sync.Mutex
	fail  map[string]error
	calls int
}

func (e *stubExtractor) Extract(_ context.Context, text string, item contracts.WorkItem) (contracts.Metadata, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if err, ok := e.fail[item.Name]; ok {
		return contracts.Metadata{}, err
	}
	return contracts.Metadata{
		CustomerEntity: "Circle K Sverige AB",
		SupplierEntity: "Supplier " + item.Name,
		EffectiveDate:  "2024-04-01",
		ContractType:   "Supply Agreement",
		SourceLanguage: "sv",
		Confidence:     contracts.ConfidenceHigh,
	}, nil
}

type stubStore struct {
	mu      sync.Mutex
	batches []contracts.BatchSummary
	results []contracts.ExtractionResult
}

func (s *stubStore) RecordBatch(_ context.Context, summary contracts.BatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, summary)
	return nil
}

func (s *stubStore) RecordResult(_ context.Context, _ string, result contracts.ExtractionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func newTestPipeline(t *testing.T, src contracts.Source, ext contracts.Extractor, opts Options) *Pipeline {
	t.Helper()
	p, err := New(src, reader.New(nil), ext, newStubClock(), stubIDGen{id: "batch-test"}, zap.NewNop(), opts)
	require.NoError(t, err)
	return p
}

func TestRun_EndToEnd(t *testing.T) {
	src := srcmem.NewSource()
	for i := 0; i < 5; i++ {
		src.Put(fmt.Sprintf("contract_%02d.txt", i), []byte("SUPPLY AGREEMENT between parties"))
	}
	src.Put("skan.pdf", []byte("%PDF-1.7"))
	src.Put("notes.json", []byte("{}"))

	dir := t.TempDir()
	opts := Options{
		Executor: executor.Options{Workers: 3, MaxRetries: 1, RetryDelay: time.Millisecond},
		CSVPath:  filepath.Join(dir, "out.csv"),
		Topic:    "batch-events",
	}
	ext := &stubExtractor{}
	pub := pubmem.New()
	store := &stubStore{}
	p := newTestPipeline(t, src, ext, opts).WithPublisher(pub).WithStore(store)

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "batch-test", outcome.BatchID)

	// 5 txt documents plus the PDF; the json file is filtered out.
	require.Len(t, outcome.Results, 6)
	require.Equal(t, 5, outcome.Summary.Succeeded)
	require.Equal(t, 1, outcome.Summary.Failed)
	require.Equal(t, 5, outcome.Summary.Languages["sv"])

	f, err := os.Open(opts.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)

	require.Len(t, pub.Messages(), 1)
	require.Len(t, store.batches, 1)
	require.Len(t, store.results, 6)

	snap := p.Snapshot()
	require.Equal(t, 6, snap.Completed)
	require.Equal(t, 5, snap.Succeeded)
}

func TestRun_FailedItemDoesNotAbortBatch(t *testing.T) {
	src := srcmem.NewSource()
	src.Put("good.txt", []byte("AGREEMENT"))
	src.Put("bad.txt", []byte("AGREEMENT"))

	ext := &stubExtractor{fail: map[string]error{"bad.txt": fmt.Errorf("model refused the document")}}
	p := newTestPipeline(t, src, ext, Options{
		Executor: executor.Options{Workers: 2, MaxRetries: 2, RetryDelay: time.Millisecond},
	})

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2)
	require.Equal(t, 1, outcome.Summary.Succeeded)
	require.Equal(t, 1, outcome.Summary.Failed)

	for _, r := range outcome.Results {
		if r.Item.Name == "bad.txt" {
			require.True(t, r.Failed)
			require.Equal(t, 1, r.AttemptsUsed)
			require.Contains(t, r.FailReason, "model refused")
		}
	}
}

func TestRun_RetryableFailureRetries(t *testing.T) {
	src := srcmem.NewSource()
	src.Put("limited.txt", []byte("AGREEMENT"))

	ext := &stubExtractor{fail: map[string]error{
		"limited.txt": &contracts.RateLimitError{StatusCode: 429, Err: fmt.Errorf("quota")},
	}}
	p := newTestPipeline(t, src, ext, Options{
		Executor: executor.Options{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond},
	})

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, outcome.Results, 1)
	require.True(t, outcome.Results[0].Failed)
	require.Equal(t, 3, outcome.Results[0].AttemptsUsed)
	require.Equal(t, 3, ext.calls)
}

func TestRun_EmptySource(t *testing.T) {
	p := newTestPipeline(t, srcmem.NewSource(), &stubExtractor{}, Options{})

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, outcome.Results)
	require.Equal(t, 0, outcome.Summary.Total)
}

func TestExtractOne(t *testing.T) {
	src := srcmem.NewSource()
	src.Put("single.txt", []byte("AGREEMENT"))

	p := newTestPipeline(t, src, &stubExtractor{}, Options{})

	md, err := p.ExtractOne(context.Background(), contracts.WorkItem{
		Name:     "single.txt",
		Location: "single.txt",
		Source:   contracts.SourceMemory,
	})
	require.NoError(t, err)
	require.Equal(t, "Circle K Sverige AB", md.CustomerEntity)
	require.False(t, md.ExtractedAt.IsZero())
}
