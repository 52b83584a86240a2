// Package allocation holds the ticket quantities promised to members per
// range, and the deficit read model the assignment engine consumes.
package allocation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Allocation is a recorded promise of a ticket quantity to a member from a
// specific range.
type Allocation struct {
	id        uuid.UUID
	memberID  uuid.UUID
	rangeID   uuid.UUID
	quantity  int
	createdAt time.Time
}

func NewAllocation(memberID, rangeID uuid.UUID, quantity int) (*Allocation, error) {
	if memberID == uuid.Nil {
		return nil, fmt.Errorf("member ID is required")
	}
	if rangeID == uuid.Nil {
		return nil, fmt.Errorf("range ID is required")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	return &Allocation{
		id:        uuid.New(),
		memberID:  memberID,
		rangeID:   rangeID,
		quantity:  quantity,
		createdAt: time.Now(),
	}, nil
}

func ReconstructAllocation(
	id uuid.UUID,
	memberID uuid.UUID,
	rangeID uuid.UUID,
	quantity int,
	createdAt time.Time,
) (*Allocation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("allocation ID cannot be nil")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	return &Allocation{
		id:        id,
		memberID:  memberID,
		rangeID:   rangeID,
		quantity:  quantity,
		createdAt: createdAt,
	}, nil
}

func (a *Allocation) ID() uuid.UUID {
	return a.id
}

func (a *Allocation) MemberID() uuid.UUID {
	return a.memberID
}

func (a *Allocation) RangeID() uuid.UUID {
	return a.rangeID
}

func (a *Allocation) Quantity() int {
	return a.quantity
}

func (a *Allocation) CreatedAt() time.Time {
	return a.createdAt
}

// Deficit is the assignment engine's read model: an allocation annotated with
// how many tickets already consumed it and the member's priority rank.
type Deficit struct {
	AllocationID uuid.UUID
	MemberID     uuid.UUID
	RangeID      uuid.UUID
	Quantity     int
	LinkedCount  int
	MemberOrder  *int
	CreatedAt    time.Time
}

// Outstanding is how many tickets the allocation still lacks.
func (d Deficit) Outstanding() int {
	return d.Quantity - d.LinkedCount
}
