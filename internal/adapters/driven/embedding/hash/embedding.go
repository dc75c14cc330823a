// Package hash provides an offline embedding service based on feature hashing.
//
// Each lower-cased word and each character trigram of a word is hashed with
// FNV-1a into one of Dimensions buckets. A second hash bit picks the sign so
// that collisions tend to cancel rather than accumulate. The result is L2
// normalised, so cosine similarity measures shared vocabulary. It needs no
// model, no network and no credentials.
package hash

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 768
	ModelName         = "fnv-hash"

	wordWeight    = 1.0
	trigramWeight = 0.5
)

// EmbeddingService generates deterministic feature-hashing embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hash embedder with the given dimensions.
func NewEmbeddingService(dimensions int) (*EmbeddingService, error) {
	if dimensions < 0 {
		return nil, errors.New("hash: dimensions must be positive")
	}
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}, nil
}

// Embed hashes text into a normalised vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := make([]float64, s.dimensions)
	for _, word := range tokenize(text) {
		s.add(acc, word, wordWeight)
		runes := []rune("^" + word + "$")
		for i := 0; i+3 <= len(runes); i++ {
			s.add(acc, string(runes[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := sum % uint64(s.dimensions)
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model identifier.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
