package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/similarity"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

var schema = []string{
	"CREATE EXTENSION IF NOT EXISTS vector",
	`CREATE TABLE IF NOT EXISTS docchatter_collections (
		name TEXT PRIMARY KEY,
		dimensions INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS docchatter_entries (
		seq BIGSERIAL PRIMARY KEY,
		collection TEXT NOT NULL REFERENCES docchatter_collections(name) ON DELETE CASCADE,
		id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		source TEXT NOT NULL,
		position INT NOT NULL,
		char_offset INT NOT NULL,
		content TEXT NOT NULL,
		embedding VECTOR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"CREATE INDEX IF NOT EXISTS idx_docchatter_entries_source ON docchatter_entries(collection, source)",
}

// VectorIndex implements driven.VectorIndex on PostgreSQL.
type VectorIndex struct {
	pool       *pgxpool.Pool
	collection string
}

var _ driven.VectorIndex = (*VectorIndex)(nil)

// New connects to dsn, ensures the schema and binds collection.
func New(ctx context.Context, dsn, collection string) (*VectorIndex, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensuring schema: %w", err)
		}
	}

	return &VectorIndex{pool: pool, collection: collection}, nil
}

// Collection returns the bound collection name.
func (v *VectorIndex) Collection() string {
	return v.collection
}

// Add appends entries in one transaction.
func (v *VectorIndex) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return v.withTx(ctx, func(tx pgx.Tx) error {
		return v.insert(ctx, tx, entries)
	})
}

// Replace deletes the source's entries and adds the new ones in one transaction.
func (v *VectorIndex) Replace(ctx context.Context, source string, entries []domain.IndexEntry) (int, error) {
	var removed int
	err := v.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"DELETE FROM docchatter_entries WHERE collection = $1 AND source = $2", v.collection, source)
		if err != nil {
			return fmt.Errorf("deleting entries for %s: %w", source, err)
		}
		removed = int(tag.RowsAffected())

		if _, err := tx.Exec(ctx, `
			UPDATE docchatter_collections SET dimensions = 0
			WHERE name = $1 AND NOT EXISTS (SELECT 1 FROM docchatter_entries WHERE collection = $1)
		`, v.collection); err != nil {
			return fmt.Errorf("resetting collection dimension: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}
		return v.insert(ctx, tx, entries)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (v *VectorIndex) insert(ctx context.Context, tx pgx.Tx, entries []domain.IndexEntry) error {
	if _, err := tx.Exec(ctx,
		"INSERT INTO docchatter_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", v.collection); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	// Row lock serialises concurrent writers deciding the dimension.
	var dims int
	if err := tx.QueryRow(ctx,
		"SELECT dimensions FROM docchatter_collections WHERE name = $1 FOR UPDATE", v.collection).Scan(&dims); err != nil {
		return fmt.Errorf("reading collection dimension: %w", err)
	}

	resolved, err := similarity.CheckDimensions(dims, entries)
	if err != nil {
		return err
	}
	if resolved != dims {
		if _, err := tx.Exec(ctx,
			"UPDATE docchatter_collections SET dimensions = $1 WHERE name = $2", resolved, v.collection); err != nil {
			return fmt.Errorf("setting collection dimension: %w", err)
		}
	}

	for _, e := range entries {
		c := e.Chunk
		if _, err := tx.Exec(ctx, `
			INSERT INTO docchatter_entries
				(collection, id, document_id, source, position, char_offset, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, v.collection, c.ID, c.DocumentID, c.Source, c.Position, c.Offset, c.Content,
			pgvector.NewVector(e.Embedding)); err != nil {
			return fmt.Errorf("saving entry %s: %w", c.ID, err)
		}
	}
	return nil
}

func (v *VectorIndex) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := v.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search orders by cosine similarity, then by insertion sequence.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	dims, err := v.dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if len(query) != dims {
		return nil, fmt.Errorf("%w: collection %s has %d dimensions, query has %d",
			domain.ErrDimensionMismatch, v.collection, dims, len(query))
	}

	rows, err := v.pool.Query(ctx, searchQuery, v.collection, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("querying similar entries: %w", err)
	}
	defer rows.Close()

	results := make([]domain.ScoredChunk, 0, k)
	for rows.Next() {
		var sc domain.ScoredChunk
		c := &sc.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.Position, &c.Offset, &c.Content, &sc.Score); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		results = append(results, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return results, nil
}

// searchQuery ranks by cosine similarity. pgvector's <=> is NaN when either
// side has zero norm; that pair scores 0, as in the sqlite and memory
// indexes, instead of sorting ahead of every real match.
const searchQuery = `
	SELECT id, document_id, source, position, char_offset, content,
		CASE WHEN d.distance = 'NaN'::float8 THEN 0 ELSE 1 - d.distance END AS score
	FROM docchatter_entries,
		LATERAL (SELECT embedding <=> $2::vector AS distance) AS d
	WHERE collection = $1
	ORDER BY score DESC, seq ASC
	LIMIT $3
`

// Count returns the number of entries in the collection.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM docchatter_entries WHERE collection = $1", v.collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Stats describes the collection.
func (v *VectorIndex) Stats(ctx context.Context) (domain.CollectionStats, error) {
	stats := domain.CollectionStats{Collection: v.collection}

	var err error
	if stats.Entries, err = v.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Dimensions, err = v.dimensions(ctx); err != nil {
		return stats, err
	}

	rows, err := v.pool.Query(ctx, `
		SELECT source FROM docchatter_entries WHERE collection = $1
		GROUP BY source ORDER BY MIN(seq)
	`, v.collection)
	if err != nil {
		return stats, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return stats, fmt.Errorf("scanning source: %w", err)
		}
		stats.Sources = append(stats.Sources, source)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating sources: %w", err)
	}
	return stats, nil
}

// Reset deletes the collection and, by cascade, its entries.
func (v *VectorIndex) Reset(ctx context.Context) error {
	if _, err := v.pool.Exec(ctx, "DELETE FROM docchatter_collections WHERE name = $1", v.collection); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (v *VectorIndex) Close() error {
	v.pool.Close()
	return nil
}

func (v *VectorIndex) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := v.pool.QueryRow(ctx,
		"SELECT dimensions FROM docchatter_collections WHERE name = $1", v.collection).Scan(&dims)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection dimension: %w", err)
	}
	return dims, nil
}
