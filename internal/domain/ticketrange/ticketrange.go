// Package ticketrange holds the contiguous ticket-number ranges of an event.
// Ranges carry the price label and cost used by reconciliation and are the
// unit the inventory generator and the assignment engine work against.
package ticketrange

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultTicketCost is used when a range has no cost configured.
const DefaultTicketCost = 50

type TicketRange struct {
	id          uuid.UUID
	eventID     uuid.UUID
	start       int
	end         int
	rangeType   string
	cost        *int
	generatedAt *time.Time
	deletedAt   *time.Time
	createdAt   time.Time
}

func NewTicketRange(eventID uuid.UUID, start, end int, rangeType string, cost *int) (*TicketRange, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID is required")
	}
	if start < 0 {
		return nil, fmt.Errorf("range start cannot be negative")
	}
	if end < start {
		return nil, fmt.Errorf("range end %d is before start %d", end, start)
	}
	if len(rangeType) == 0 {
		return nil, fmt.Errorf("range type is required")
	}
	if cost != nil && *cost < 0 {
		return nil, fmt.Errorf("range cost cannot be negative")
	}

	return &TicketRange{
		id:        uuid.New(),
		eventID:   eventID,
		start:     start,
		end:       end,
		rangeType: rangeType,
		cost:      cost,
		createdAt: time.Now(),
	}, nil
}

func ReconstructTicketRange(
	id uuid.UUID,
	eventID uuid.UUID,
	start, end int,
	rangeType string,
	cost *int,
	generatedAt *time.Time,
	deletedAt *time.Time,
	createdAt time.Time,
) (*TicketRange, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("range ID cannot be nil")
	}
	if end < start {
		return nil, fmt.Errorf("range end %d is before start %d", end, start)
	}
	return &TicketRange{
		id:          id,
		eventID:     eventID,
		start:       start,
		end:         end,
		rangeType:   rangeType,
		cost:        cost,
		generatedAt: generatedAt,
		deletedAt:   deletedAt,
		createdAt:   createdAt,
	}, nil
}

func (r *TicketRange) ID() uuid.UUID {
	return r.id
}

func (r *TicketRange) EventID() uuid.UUID {
	return r.eventID
}

func (r *TicketRange) Start() int {
	return r.start
}

func (r *TicketRange) End() int {
	return r.end
}

func (r *TicketRange) Type() string {
	return r.rangeType
}

func (r *TicketRange) Cost() *int {
	return r.cost
}

// CostOrDefault returns the per-ticket cost, falling back to
// DefaultTicketCost when none is configured.
func (r *TicketRange) CostOrDefault() int {
	if r.cost != nil {
		return *r.cost
	}
	return DefaultTicketCost
}

func (r *TicketRange) GeneratedAt() *time.Time {
	return r.generatedAt
}

func (r *TicketRange) DeletedAt() *time.Time {
	return r.deletedAt
}

func (r *TicketRange) CreatedAt() time.Time {
	return r.createdAt
}

func (r *TicketRange) IsDeleted() bool {
	return r.deletedAt != nil
}

// Size is the count of numbers covered by the range, bounds inclusive.
func (r *TicketRange) Size() int {
	return r.end - r.start + 1
}

// Contains reports whether the number falls inside the range bounds.
func (r *TicketRange) Contains(number int) bool {
	return number >= r.start && number <= r.end
}

// Overlaps reports whether [start,end] intersects this range.
func (r *TicketRange) Overlaps(start, end int) bool {
	return start <= r.end && end >= r.start
}

// Numbers returns every number covered by the range in ascending order.
func (r *TicketRange) Numbers() []int {
	numbers := make([]int, 0, r.Size())
	for n := r.start; n <= r.end; n++ {
		numbers = append(numbers, n)
	}
	return numbers
}

// ExpandTo grows the range to the new bounds and returns the numbers that
// became part of it. Shrinking is rejected without mutating the range: a
// smaller range would orphan already issued tickets. Returns an empty slice
// when the bounds are unchanged.
func (r *TicketRange) ExpandTo(newStart, newEnd int) ([]int, error) {
	if newEnd < r.end {
		return nil, fmt.Errorf("cannot decrease end from %d to %d: existing tickets would be orphaned", r.end, newEnd)
	}
	if newStart > r.start {
		return nil, fmt.Errorf("cannot increase start from %d to %d: existing tickets would be orphaned", r.start, newStart)
	}

	if newStart == r.start && newEnd == r.end {
		return []int{}, nil
	}

	added := make([]int, 0, (r.start-newStart)+(newEnd-r.end))
	for n := newStart; n < r.start; n++ {
		added = append(added, n)
	}
	for n := r.end + 1; n <= newEnd; n++ {
		added = append(added, n)
	}

	r.start = newStart
	r.end = newEnd

	return added, nil
}

// MarkGenerated records when the range had its ticket inventory materialized.
func (r *TicketRange) MarkGenerated(at time.Time) {
	r.generatedAt = &at
}
