package ticketrange

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, r *TicketRange) error
	GetByID(ctx context.Context, id uuid.UUID) (*TicketRange, error)
	// ListActiveByEvent returns the non-deleted ranges of an event ordered by
	// start ascending.
	ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*TicketRange, error)
	// ListByEvent returns every range of the event including tombstoned ones.
	// Reconciliation needs it: tickets issued from a since-deleted range still
	// carry that range's cost.
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*TicketRange, error)
	// FindOverlapping returns one active range of the event intersecting
	// [start,end], or nil when none does. excludeID skips the range being
	// updated.
	FindOverlapping(ctx context.Context, eventID uuid.UUID, start, end int, excludeID *uuid.UUID) (*TicketRange, error)
	UpdateBounds(ctx context.Context, id uuid.UUID, start, end int) error
	SetGeneratedAt(ctx context.Context, id uuid.UUID, at time.Time) error
}
