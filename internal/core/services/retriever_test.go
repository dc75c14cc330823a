package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karagwa/DocChatter/internal/adapters/driven/storage/memory"
	"github.com/Karagwa/DocChatter/internal/core/domain"
)

func seedIndex(t *testing.T, f *pipelineFixture, texts ...string) {
	t.Helper()
	entries := make([]domain.IndexEntry, len(texts))
	for i, text := range texts {
		entries[i] = domain.IndexEntry{
			Chunk:     domain.Chunk{ID: fmt.Sprintf("c%d", i), Source: "seed.txt", Content: text, Position: i},
			Embedding: mustEmbed(t, f, text),
		}
	}
	require.NoError(t, f.index.Add(context.Background(), entries))
}

func TestRetriever_DefaultK(t *testing.T) {
	f := newFixture(t)
	seedIndex(t, f, "apples", "apple pie", "banana bread", "cherry tart", "plum jam")
	r := NewRetriever(f.embedder, f.index, 0)

	assert.Equal(t, domain.DefaultTopK, r.K())

	chunks, err := r.Retrieve(context.Background(), "apple", 0)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestRetriever_OrderedByScore(t *testing.T) {
	f := newFixture(t)
	seedIndex(t, f, "banana bread", "apple pie with apple slices", "cherry tart", "apple")
	r := NewRetriever(f.embedder, f.index, 3)

	scored, err := r.RetrieveScored(context.Background(), "apple", 2)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.GreaterOrEqual(t, scored[0].Score, scored[1].Score)
	assert.Equal(t, "apple", scored[0].Chunk.Content)

	chunks, err := r.Retrieve(context.Background(), "apple", 2)
	require.NoError(t, err)
	assert.Equal(t, scored[0].Chunk, chunks[0])
	assert.Equal(t, scored[1].Chunk, chunks[1])
}

func TestRetriever_EmptyIndex(t *testing.T) {
	f := newFixture(t)
	r := NewRetriever(f.embedder, f.index, 3)

	chunks, err := r.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRetriever_Errors(t *testing.T) {
	f := newFixture(t)
	f.embedder.embedErr = errors.New("offline")

	_, err := NewRetriever(f.embedder, f.index, 3).Retrieve(context.Background(), "q", 0)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)

	broken := &brokenIndex{VectorIndex: memory.NewVectorIndex("x"), err: errors.New("io")}
	_, err = NewRetriever(newFlakyEmbedder(t, -1), broken, 3).Retrieve(context.Background(), "q", 0)
	assert.ErrorIs(t, err, domain.ErrIndexReadFailure)

	_, err = NewRetriever(nil, f.index, 3).Retrieve(context.Background(), "q", 0)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
}
