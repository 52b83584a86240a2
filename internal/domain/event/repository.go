package event

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the read-side access the engine needs on events.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
}
