package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/adapters/driven/embedding/hash"
	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/memory"
	"github.com/Karagwa/DocChatter/internal/chunker"
	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/loaders"
)

const testTemplate = "Context:\n{context}\n\nQuestion: {question}\nAnswer:"

// stubLLM records prompts and returns a canned answer.
type stubLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (m *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *stubLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *stubLLM) ModelName() string            { return "stub" }
func (m *stubLLM) Ping(_ context.Context) error { return nil }
func (m *stubLLM) Close() error                 { return nil }

// stubPrompts serves a single template.
type stubPrompts struct {
	tmpl string
	err  error
}

func (p *stubPrompts) Load(_ string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.tmpl, nil
}

func (p *stubPrompts) Reload() {}

// flakyEmbedder delegates to the hash embedder and starts failing after
// okBatches successful EmbedBatch calls. A negative okBatches never fails.
type flakyEmbedder struct {
	*hash.EmbeddingService
	okBatches int
	batches   int
	embedErr  error
}

func newFlakyEmbedder(t *testing.T, okBatches int) *flakyEmbedder {
	t.Helper()
	h, err := hash.NewEmbeddingService(64)
	require.NoError(t, err)
	return &flakyEmbedder{EmbeddingService: h, okBatches: okBatches}
}

func (e *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches++
	if e.okBatches >= 0 && e.batches > e.okBatches {
		return nil, errors.New("model unavailable")
	}
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

func (e *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return e.EmbeddingService.Embed(ctx, text)
}

// brokenIndex fails every call except Collection.
type brokenIndex struct {
	*memory.VectorIndex
	err error
}

func (b *brokenIndex) Add(_ context.Context, _ []domain.IndexEntry) error { return b.err }
func (b *brokenIndex) Replace(_ context.Context, _ string, _ []domain.IndexEntry) (int, error) {
	return 0, b.err
}
func (b *brokenIndex) Search(_ context.Context, _ []float32, _ int) ([]domain.ScoredChunk, error) {
	return nil, b.err
}
func (b *brokenIndex) Count(_ context.Context) (int, error) { return 0, b.err }
func (b *brokenIndex) Stats(_ context.Context) (domain.CollectionStats, error) {
	return domain.CollectionStats{}, b.err
}
func (b *brokenIndex) Reset(_ context.Context) error { return b.err }

// fixedChunker reports whatever configuration it is given.
type fixedChunker struct {
	size, overlap int
}

func (c fixedChunker) Split(_ *domain.Document) []domain.Chunk { return nil }
func (c fixedChunker) Size() int                               { return c.size }
func (c fixedChunker) Overlap() int                            { return c.overlap }

// pipelineFixture wires real local collaborators around a memory index.
type pipelineFixture struct {
	index    *memory.VectorIndex
	embedder *flakyEmbedder
	llm      *stubLLM
	ingest   *IngestService
	pipeline *PipelineService
}

func newFixture(t *testing.T, opts ...IngestOption) *pipelineFixture {
	t.Helper()
	splitter, err := chunker.New()
	require.NoError(t, err)

	f := &pipelineFixture{
		index:    memory.NewVectorIndex("test"),
		embedder: newFlakyEmbedder(t, -1),
		llm:      &stubLLM{answer: "42"},
	}
	f.ingest = NewIngestService(loaders.DefaultRegistry(), splitter, f.embedder, f.index, opts...)
	f.pipeline = NewPipelineService(
		f.ingest,
		NewRetriever(f.embedder, f.index, 0),
		NewAnswerGenerator(f.llm, &stubPrompts{tmpl: testTemplate}),
		f.index,
	)
	return f
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
