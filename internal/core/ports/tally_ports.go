package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type TallyService interface {
	// Tally returns nil without error when no votes have been cast.
	Tally(ctx context.Context, proposalID uuid.UUID) (*domain.TallyResult, error)
}
