// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ResultStoreConfig controls the Postgres connection pool used for batch and
// result rows.
type ResultStoreConfig struct {
	DSN             string
	BatchTable      string
	ResultTable     string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// ResultStore writes batch summaries and per-item results into Postgres.
type ResultStore struct {
	pool        execCloser
	batchTable  string
	resultTable string
}

// NewResultStore creates a Postgres-backed ResultStore using the provided config.
func NewResultStore(ctx context.Context, cfg ResultStoreConfig) (*ResultStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	batchTable, resultTable, err := tableNames(cfg.BatchTable, cfg.ResultTable)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ResultStore{pool: pool, batchTable: batchTable, resultTable: resultTable}, nil
}

// NewResultStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewResultStoreWithPool(pool execCloser, batchTable, resultTable string) (*ResultStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	bt, rt, err := tableNames(batchTable, resultTable)
	if err != nil {
		return nil, err
	}
	return &ResultStore{pool: pool, batchTable: bt, resultTable: rt}, nil
}

func tableNames(batchTable, resultTable string) (string, string, error) {
	if batchTable == "" {
		batchTable = "extraction_batches"
	}
	if resultTable == "" {
		resultTable = "extraction_results"
	}
	for _, t := range []string{batchTable, resultTable} {
		if !validTableName.MatchString(t) {
			return "", "", fmt.Errorf("invalid table name %q", t)
		}
	}
	return batchTable, resultTable, nil
}

// Close releases the underlying pool resources.
func (s *ResultStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// RecordBatch inserts one row per finished batch.
func (s *ResultStore) RecordBatch(ctx context.Context, summary contracts.BatchSummary) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("result store is not configured")
	}
	if summary.BatchID == "" {
		return fmt.Errorf("batch id is required")
	}
	languagesJSON, err := json.Marshal(summary.Languages)
	if err != nil {
		return fmt.Errorf("marshal languages: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	batch_id,
	total,
	succeeded,
	failed,
	languages,
	elapsed_ms,
	finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`, s.batchTable)
	_, err = s.pool.Exec(ctx, query,
		summary.BatchID,
		summary.Total,
		summary.Succeeded,
		summary.Failed,
		languagesJSON,
		summary.Elapsed.Milliseconds(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert batch row: %w", err)
	}
	return nil
}

// RecordResult inserts one row per resolved item. The full metadata payload
// is kept as JSONB alongside the columns used for filtering.
func (s *ResultStore) RecordResult(ctx context.Context, batchID string, result contracts.ExtractionResult) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("result store is not configured")
	}
	if batchID == "" {
		return fmt.Errorf("batch id is required")
	}
	metadataJSON, err := json.Marshal(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	batch_id,
	file_name,
	source,
	failed,
	fail_reason,
	attempts_used,
	duration_ms,
	source_language,
	confidence,
	metadata
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, s.resultTable)
	_, err = s.pool.Exec(ctx, query,
		batchID,
		result.Item.Name,
		string(result.Item.Source),
		result.Failed,
		result.FailReason,
		result.AttemptsUsed,
		result.Duration.Milliseconds(),
		result.Metadata.SourceLanguage,
		string(result.Metadata.Confidence),
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert result row: %w", err)
	}
	return nil
}
