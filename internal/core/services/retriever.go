package services

import (
	"context"
	"errors"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// Retriever finds the chunks most similar to a question.
// It does no query rewriting, re-ranking or deduplication.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	k        int
}

// NewRetriever creates a retriever. k <= 0 uses domain.DefaultTopK.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, k int) *Retriever {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, k: k}
}

// K returns the default number of chunks retrieved.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve returns at most k chunks in descending similarity order.
// k <= 0 uses the retriever's default.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.Chunk, error) {
	scored, err := r.RetrieveScored(ctx, question, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

// RetrieveScored is Retrieve keeping the similarity scores.
// Errors are *domain.QueryError at the RETRIEVING stage.
func (r *Retriever) RetrieveScored(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = r.k
	}
	if r.embedder == nil {
		return nil, domain.NewQueryError(domain.ErrEmbeddingFailure, domain.StageRetrieving,
			errors.New("no embedding service configured"))
	}
	if r.index == nil {
		return nil, domain.NewQueryError(domain.ErrIndexReadFailure, domain.StageRetrieving,
			errors.New("no vector index configured"))
	}

	done := logger.Stage("embed question")
	vec, err := r.embedder.Embed(ctx, question)
	done()
	if err != nil {
		return nil, domain.NewQueryError(domain.ErrEmbeddingFailure, domain.StageRetrieving, err)
	}

	done = logger.Stage("search")
	results, err := r.index.Search(ctx, vec, k)
	done()
	if err != nil {
		return nil, domain.NewQueryError(domain.ErrIndexReadFailure, domain.StageRetrieving, err)
	}

	for i, sc := range results {
		logger.Debug("  %d. %s#%d offset=%d score=%.4f", i+1, sc.Chunk.Source, sc.Chunk.Position, sc.Chunk.Offset, sc.Score)
	}
	return results, nil
}
