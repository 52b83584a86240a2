package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// SumActiveByMember totals the non-deleted payment amounts of a member.
	SumActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error)
	// SumActiveByEvent totals non-deleted payment amounts across all members
	// of the event.
	SumActiveByEvent(ctx context.Context, eventID uuid.UUID) (int, error)
	// SumActiveByEventBetween totals non-deleted payments with payedAt inside
	// [from, to].
	SumActiveByEventBetween(ctx context.Context, eventID uuid.UUID, from, to time.Time) (int, error)
	// SumActivePerMember returns per-member totals of non-deleted payments for
	// the event.
	SumActivePerMember(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error)
	// SoftDelete stamps the tombstone; the row stays.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}
