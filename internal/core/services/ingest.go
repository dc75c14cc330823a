package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// DefaultEmbedBatchSize is the number of chunks sent per EmbedBatch call.
const DefaultEmbedBatchSize = 32

// IngestService runs the ingestion workflow: load, split, embed, write.
//
// The index write is always the last step. Every chunk is embedded before
// anything reaches the index, so a failure at any earlier step leaves the
// collection untouched.
type IngestService struct {
	loaders   driven.LoaderRegistry
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	policy    domain.ReingestPolicy
	batchSize int
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithReingestPolicy sets what happens to earlier entries of the same source.
func WithReingestPolicy(policy domain.ReingestPolicy) IngestOption {
	return func(s *IngestService) {
		if policy.IsValid() {
			s.policy = policy
		}
	}
}

// WithEmbedBatchSize sets how many chunks are embedded per call.
func WithEmbedBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	loaders driven.LoaderRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		loaders:   loaders,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		policy:    domain.ReingestReplace,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the re-ingestion policy in effect.
func (s *IngestService) Policy() domain.ReingestPolicy {
	return s.policy
}

// Ingest loads the file at path and indexes it.
func (s *IngestService) Ingest(
	ctx context.Context, path string, progress driving.IngestProgress,
) (*domain.IngestReport, error) {
	source := filepath.Base(path)
	if strings.TrimSpace(path) == "" {
		return nil, domain.NewIngestError(domain.ErrInvalidInput, "", errors.New("no file path given"))
	}
	if s.loaders == nil {
		return nil, domain.NewIngestError(domain.ErrUnsupportedFormat, source, errors.New("no document loaders configured"))
	}

	done := logger.Stage("load " + source)
	doc, err := s.loaders.Load(ctx, path)
	done()
	if err != nil {
		kind := domain.ErrInvalidInput
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			kind = domain.ErrUnsupportedFormat
		}
		return nil, domain.NewIngestError(kind, source, err)
	}

	return s.IngestDocument(ctx, doc, progress)
}

// IngestDocument splits, embeds and indexes an already loaded document.
func (s *IngestService) IngestDocument(
	ctx context.Context, doc *domain.Document, progress driving.IngestProgress,
) (*domain.IngestReport, error) {
	if doc == nil {
		return nil, domain.NewIngestError(domain.ErrInvalidInput, "", errors.New("nil document"))
	}
	logger.Section("Ingest " + doc.Source)

	if strings.TrimSpace(doc.Content) == "" {
		return nil, domain.NewIngestError(domain.ErrEmptyDocument, doc.Source, errors.New("no extractable text"))
	}

	chunks, err := s.split(doc)
	if err != nil {
		return nil, domain.NewIngestError(domain.ErrChunkingFailure, doc.Source, err)
	}
	if len(chunks) == 0 {
		return nil, domain.NewIngestError(domain.ErrEmptyDocument, doc.Source, nil)
	}
	logger.Debug("Split %d characters into %d chunks (size=%d, overlap=%d)",
		len([]rune(doc.Content)), len(chunks), s.chunker.Size(), s.chunker.Overlap())

	entries, err := s.embed(ctx, chunks, progress)
	if err != nil {
		return nil, domain.NewIngestError(domain.ErrEmbeddingFailure, doc.Source, err)
	}

	replaced, err := s.write(ctx, doc.Source, entries)
	if err != nil {
		return nil, domain.NewIngestError(domain.ErrIndexWriteFailure, doc.Source, err)
	}

	report := &domain.IngestReport{
		DocumentID: doc.ID,
		Source:     doc.Source,
		Collection: s.index.Collection(),
		Chunks:     len(entries),
		Dimensions: len(entries[0].Embedding),
		Replaced:   replaced,
	}
	logger.Info("Indexed %d chunks from %s into %s (replaced %d)",
		report.Chunks, report.Source, report.Collection, report.Replaced)
	return report, nil
}

func (s *IngestService) split(doc *domain.Document) ([]domain.Chunk, error) {
	if s.chunker == nil {
		return nil, errors.New("no chunker configured")
	}
	cfg := domain.ChunkingSettings{Size: s.chunker.Size(), Overlap: s.chunker.Overlap()}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("size %d, overlap %d: %w", cfg.Size, cfg.Overlap, err)
	}
	defer logger.Stage("split")()
	return s.chunker.Split(doc), nil
}

// embed computes every vector before returning; nothing is written here.
func (s *IngestService) embed(
	ctx context.Context, chunks []domain.Chunk, progress driving.IngestProgress,
) ([]domain.IndexEntry, error) {
	if s.embedder == nil {
		return nil, errors.New("no embedding service configured")
	}
	defer logger.Stage("embed")()

	total := len(chunks)
	entries := make([]domain.IndexEntry, 0, total)
	if progress != nil {
		progress(0, total)
	}

	for start := 0; start < total; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+s.batchSize, total)

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
		}

		for i, vec := range vectors {
			if len(vec) == 0 {
				return nil, fmt.Errorf("empty embedding for chunk %d", start+i)
			}
			entries = append(entries, domain.IndexEntry{Chunk: chunks[start+i], Embedding: vec})
		}

		if progress != nil {
			progress(end, total)
		}
	}

	return entries, nil
}

func (s *IngestService) write(ctx context.Context, source string, entries []domain.IndexEntry) (int, error) {
	if s.index == nil {
		return 0, errors.New("no vector index configured")
	}
	defer logger.Stage("index write")()

	if s.policy == domain.ReingestAppend {
		return 0, s.index.Add(ctx, entries)
	}
	return s.index.Replace(ctx, source, entries)
}
