package services

import (
	"context"
	"fmt"

	"github.com/Karagwa/DocChatter/internal/core/domain"
	"github.com/Karagwa/DocChatter/internal/core/ports/driven"
	"github.com/Karagwa/DocChatter/internal/core/ports/driving"
	"github.com/Karagwa/DocChatter/internal/logger"
)

// Ensure IndexAdminService implements the interface.
var _ driving.IndexAdmin = (*IndexAdminService)(nil)

// IndexAdminService runs administrative operations on the vector index.
type IndexAdminService struct {
	index driven.VectorIndex
}

// NewIndexAdminService creates an admin service for index.
func NewIndexAdminService(index driven.VectorIndex) *IndexAdminService {
	return &IndexAdminService{index: index}
}

// Reset deletes every entry in the bound collection.
func (s *IndexAdminService) Reset(ctx context.Context) error {
	logger.Info("Resetting collection %s", s.index.Collection())
	if err := s.index.Reset(ctx); err != nil {
		return fmt.Errorf("%w: reset %s: %w", domain.ErrIndexWriteFailure, s.index.Collection(), err)
	}
	return nil
}
