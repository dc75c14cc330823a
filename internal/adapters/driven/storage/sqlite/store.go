package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/similarity"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

// DatabaseFile is the file name created inside the data directory.
const DatabaseFile = "index.db"

// Store owns the SQLite connection shared by the collections in one file.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docchatter/index/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchatter", "index")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode so searches can run during a write
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorIndex returns a VectorIndex bound to collection.
// Closing the returned index closes the store.
func (s *Store) VectorIndex(collection string) *VectorIndex {
	return &VectorIndex{store: s, collection: collection}
}

// OpenVectorIndex opens the store in dataDir and binds it to collection.
func OpenVectorIndex(dataDir, collection string) (*VectorIndex, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}
	store, err := NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	return store.VectorIndex(collection), nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vector_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// VectorIndex implements driven.VectorIndex over one collection.
type VectorIndex struct {
	store      *Store
	collection string
}

var _ driven.VectorIndex = (*VectorIndex)(nil)

// Collection returns the bound collection name.
func (v *VectorIndex) Collection() string {
	return v.collection
}

// Add appends entries in one transaction.
func (v *VectorIndex) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return v.withTx(ctx, func(tx *sql.Tx) error {
		return v.insertLocked(ctx, tx, entries)
	})
}

// Replace deletes the source's entries and adds the new ones in one transaction.
func (v *VectorIndex) Replace(ctx context.Context, source string, entries []domain.IndexEntry) (int, error) {
	var removed int
	err := v.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM index_entries WHERE collection = ? AND source = ?", v.collection, source)
		if err != nil {
			return fmt.Errorf("deleting entries for %s: %w", source, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("counting deleted entries: %w", err)
		}
		removed = int(n)

		// An emptied collection may be refilled at a new dimension.
		if _, err := tx.ExecContext(ctx, `
			UPDATE collections SET dimensions = 0
			WHERE name = ? AND NOT EXISTS (SELECT 1 FROM index_entries WHERE collection = ?)
		`, v.collection, v.collection); err != nil {
			return fmt.Errorf("resetting collection dimension: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}
		return v.insertLocked(ctx, tx, entries)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// insertLocked checks dimensions against the collection row and inserts entries.
func (v *VectorIndex) insertLocked(ctx context.Context, tx *sql.Tx, entries []domain.IndexEntry) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO collections (name, dimensions) VALUES (?, 0)", v.collection); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	var dims int
	if err := tx.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", v.collection).Scan(&dims); err != nil {
		return fmt.Errorf("reading collection dimension: %w", err)
	}

	resolved, err := similarity.CheckDimensions(dims, entries)
	if err != nil {
		return err
	}
	if resolved != dims {
		if _, err := tx.ExecContext(ctx,
			"UPDATE collections SET dimensions = ? WHERE name = ?", resolved, v.collection); err != nil {
			return fmt.Errorf("setting collection dimension: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries
			(collection, id, document_id, source, position, char_offset, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx, v.collection, c.ID, c.DocumentID, c.Source,
			c.Position, c.Offset, c.Content, float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("saving entry %s: %w", c.ID, err)
		}
	}
	return nil
}

func (v *VectorIndex) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans the collection and returns the k most similar chunks.
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

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT seq, id, document_id, source, position, char_offset, content, embedding
		FROM index_entries WHERE collection = ?
		ORDER BY seq
	`, v.collection)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var candidates []similarity.Candidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return similarity.TopK(query, candidates, k)
}

// Count returns the number of entries in the collection.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM index_entries WHERE collection = ?", v.collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Stats describes the collection. Sources are listed in first-ingested order.
func (v *VectorIndex) Stats(ctx context.Context) (domain.CollectionStats, error) {
	stats := domain.CollectionStats{Collection: v.collection}

	var err error
	if stats.Entries, err = v.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Dimensions, err = v.dimensions(ctx); err != nil {
		return stats, err
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT source FROM index_entries WHERE collection = ?
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

// Reset deletes the collection and its entries.
func (v *VectorIndex) Reset(ctx context.Context) error {
	return v.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries WHERE collection = ?", v.collection); err != nil {
			return fmt.Errorf("deleting entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", v.collection); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
		return nil
	})
}

// Close closes the underlying store.
func (v *VectorIndex) Close() error {
	return v.store.Close()
}

// dimensions returns the collection dimension, 0 when the collection is new.
func (v *VectorIndex) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", v.collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection dimension: %w", err)
	}
	return dims, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanCandidate scans an index entry row.
func scanCandidate(rows *sql.Rows) (similarity.Candidate, error) {
	var c similarity.Candidate
	var blob []byte

	if err := rows.Scan(&c.Seq, &c.Chunk.ID, &c.Chunk.DocumentID, &c.Chunk.Source,
		&c.Chunk.Position, &c.Chunk.Offset, &c.Chunk.Content, &blob); err != nil {
		return c, fmt.Errorf("scanning entry: %w", err)
	}
	c.Embedding = bytesToFloat32Slice(blob)
	return c, nil
}
