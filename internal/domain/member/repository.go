package member

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	// ListByEvent returns the event's members ordered by priority rank
	// ascending, nulls last, creation time as tiebreak.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Member, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	UpdateConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error
}
