// Package limits decorates an embedding service with input-size checks,
// request pacing and result-count validation.
package limits

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config holds the limits applied around the wrapped service.
type Config struct {
	// MaxInputChars rejects any input longer than this many characters.
	// Zero disables the check.
	MaxInputChars int

	// RequestsPerSecond paces calls to the wrapped service. Zero is unlimited.
	RequestsPerSecond float64
}

// EmbeddingService wraps another EmbeddingService.
type EmbeddingService struct {
	next     driven.EmbeddingService
	maxChars int
	limiter  *rate.Limiter
}

// Wrap decorates next with cfg.
func Wrap(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	s := &EmbeddingService{next: next, maxChars: cfg.MaxInputChars}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s
}

// Embed checks the input length, waits for a rate token and embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.check(0, text); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	v, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty vector", domain.ErrEmbeddingFailure, s.next.ModelName())
	}
	return v, nil
}

// EmbedBatch validates every input before any request is made.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, text := range texts {
		if err := s.check(i, text); err != nil {
			return nil, err
		}
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	vectors, err := s.next.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d inputs",
			domain.ErrEmbeddingFailure, s.next.ModelName(), len(vectors), len(texts))
	}
	return vectors, nil
}

func (s *EmbeddingService) check(i int, text string) error {
	if s.maxChars <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(text); n > s.maxChars {
		return fmt.Errorf("%w: input %d has %d characters, model %s accepts at most %d",
			domain.ErrEmbeddingFailure, i, n, s.next.ModelName(), s.maxChars)
	}
	return nil
}

func (s *EmbeddingService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", domain.ErrEmbeddingFailure, err)
	}
	return nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping pings the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}
