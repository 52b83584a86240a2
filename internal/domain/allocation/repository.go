package allocation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert records the desired quantity for a (member, range) pair,
	// replacing any previous quantity. Quantity zero is valid.
	Upsert(ctx context.Context, a *Allocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Allocation, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*Allocation, error)
	// ListDeficitsByEvent returns allocations with a positive deficit
	// (quantity > linked ticket count), ordered by member priority rank
	// ascending with nulls last, then allocation creation time.
	ListDeficitsByEvent(ctx context.Context, eventID uuid.UUID) ([]Deficit, error)
}
