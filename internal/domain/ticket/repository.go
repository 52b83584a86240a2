package ticket

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CountFilter narrows ticket counting queries. Typed on purpose: the
// dashboard needs a handful of fixed slices, not a free-form key bag.
type CountFilter struct {
	// LinkedOnly restricts to tickets bound to a member.
	LinkedOnly bool
	// Returned, when set, matches the returned flag exactly.
	Returned *bool
	// Delivered, when set, matches presence (true) or absence (false) of a
	// check-in.
	Delivered *bool
	// Created, when set, matches the creation origin.
	Created *Created
}

// TypeCount is a per-range-type slice of a ticket count.
type TypeCount struct {
	Type  string
	Count int64
}

// Binding is the minimal ticket projection reconciliation works with.
type Binding struct {
	TicketID uuid.UUID
	MemberID *uuid.UUID
	RangeID  *uuid.UUID
	Returned bool
}

// MemberRangeCount is how many tickets a member currently holds from a range.
// Feeds the implicit-allocation deficit computation.
type MemberRangeCount struct {
	MemberID uuid.UUID
	RangeID  uuid.UUID
	Count    int
}

type Repository interface {
	Save(ctx context.Context, t *Ticket) error
	// CreateBatch inserts tickets in bulk. Fails on duplicate numbers; the
	// caller is expected to have filtered existing ones.
	CreateBatch(ctx context.Context, tickets []*Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Ticket, error)
	GetByNumber(ctx context.Context, eventID uuid.UUID, number int) (*Ticket, error)
	// ExistingNumbers returns which of the candidate numbers already exist as
	// tickets of the event, sorted ascending.
	ExistingNumbers(ctx context.Context, eventID uuid.UUID, numbers []int) ([]int, error)
	// ListUnassignedByEvent returns tickets with no member, ordered by number
	// ascending.
	ListUnassignedByEvent(ctx context.Context, eventID uuid.UUID) ([]*Ticket, error)
	// AssignBatch binds all given tickets to the member (and optionally an
	// allocation) in one statement.
	AssignBatch(ctx context.Context, ids []uuid.UUID, memberID uuid.UUID, allocationID *uuid.UUID) error
	// Unassign clears member, allocation and the returned flag.
	Unassign(ctx context.Context, id uuid.UUID) error
	// MarkDelivered performs the conditional check-in update
	// (delivered_at IS NULL guard) and reports whether this call won the
	// update. Two concurrent check-ins can never both report true.
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SetReturned(ctx context.Context, id uuid.UUID, returned bool) error
	CountByEvent(ctx context.Context, eventID uuid.UUID, filter CountFilter) (int64, error)
	// CountPerType groups the filtered count by range type.
	CountPerType(ctx context.Context, eventID uuid.UUID, filter CountFilter) ([]TypeCount, error)
	// ListBindings returns the member/range binding of every ticket of the
	// event.
	ListBindings(ctx context.Context, eventID uuid.UUID) ([]Binding, error)
	// ListUnreturnedByMember returns the bindings of a member's tickets with
	// returned = false.
	ListUnreturnedByMember(ctx context.Context, memberID uuid.UUID) ([]Binding, error)
	// CountPerMemberRange counts assigned tickets per (member, range) pair for
	// the event.
	CountPerMemberRange(ctx context.Context, eventID uuid.UUID) ([]MemberRangeCount, error)
}

// FlowRepository is append-only storage for the custody audit trail.
type FlowRepository interface {
	Append(ctx context.Context, f *Flow) error
	AppendBatch(ctx context.Context, flows []*Flow) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*Flow, error)
	CountByTicket(ctx context.Context, ticketID uuid.UUID) (int64, error)
}
