package ports

import (
	"context"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
