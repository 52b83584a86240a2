// Package ticket holds the numbered ticket aggregate and its custody audit
// trail. Tickets are created once, never deleted, and change hands only
// through the assignment operations; every custody change appends one
// immutable flow record.
package ticket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	id           uuid.UUID
	eventID      uuid.UUID
	number       int
	rangeID      *uuid.UUID
	memberID     *uuid.UUID
	allocationID *uuid.UUID
	name         *string
	phone        *string
	description  *string
	deliveredAt  *time.Time
	returned     bool
	created      Created
	createdAt    time.Time
}

// NewTicket creates an unassigned ticket for a number inside a range. Used by
// the inventory generator.
func NewTicket(eventID uuid.UUID, number int, rangeID uuid.UUID, created Created) (*Ticket, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID is required")
	}
	if number < 0 {
		return nil, fmt.Errorf("ticket number cannot be negative")
	}
	if !created.IsValid() {
		return nil, fmt.Errorf("invalid created origin: %s", created)
	}

	rid := rangeID
	return &Ticket{
		id:        uuid.New(),
		eventID:   eventID,
		number:    number,
		rangeID:   &rid,
		created:   created,
		createdAt: time.Now(),
	}, nil
}

// NewImportedTicket creates a ticket registered after the initial lot, with
// optional buyer details and an optional range binding.
func NewImportedTicket(
	eventID uuid.UUID,
	number int,
	rangeID *uuid.UUID,
	memberID *uuid.UUID,
	name, phone, description *string,
) (*Ticket, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID is required")
	}
	if number < 0 {
		return nil, fmt.Errorf("ticket number cannot be negative")
	}
	return &Ticket{
		id:          uuid.New(),
		eventID:     eventID,
		number:      number,
		rangeID:     rangeID,
		memberID:    memberID,
		name:        name,
		phone:       phone,
		description: description,
		created:     CreatedAfterImport,
		createdAt:   time.Now(),
	}, nil
}

func ReconstructTicket(
	id uuid.UUID,
	eventID uuid.UUID,
	number int,
	rangeID *uuid.UUID,
	memberID *uuid.UUID,
	allocationID *uuid.UUID,
	name, phone, description *string,
	deliveredAt *time.Time,
	returned bool,
	created Created,
	createdAt time.Time,
) (*Ticket, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("ticket ID cannot be nil")
	}
	if !created.IsValid() {
		return nil, fmt.Errorf("invalid created origin: %s", created)
	}
	return &Ticket{
		id:           id,
		eventID:      eventID,
		number:       number,
		rangeID:      rangeID,
		memberID:     memberID,
		allocationID: allocationID,
		name:         name,
		phone:        phone,
		description:  description,
		deliveredAt:  deliveredAt,
		returned:     returned,
		created:      created,
		createdAt:    createdAt,
	}, nil
}

func (t *Ticket) ID() uuid.UUID {
	return t.id
}

func (t *Ticket) EventID() uuid.UUID {
	return t.eventID
}

func (t *Ticket) Number() int {
	return t.number
}

func (t *Ticket) RangeID() *uuid.UUID {
	return t.rangeID
}

func (t *Ticket) MemberID() *uuid.UUID {
	return t.memberID
}

func (t *Ticket) AllocationID() *uuid.UUID {
	return t.allocationID
}

func (t *Ticket) Name() *string {
	return t.name
}

func (t *Ticket) Phone() *string {
	return t.phone
}

func (t *Ticket) Description() *string {
	return t.description
}

func (t *Ticket) DeliveredAt() *time.Time {
	return t.deliveredAt
}

func (t *Ticket) Returned() bool {
	return t.returned
}

func (t *Ticket) Created() Created {
	return t.created
}

func (t *Ticket) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Ticket) IsAssigned() bool {
	return t.memberID != nil
}

func (t *Ticket) IsDelivered() bool {
	return t.deliveredAt != nil
}

// IsCritica reports the delivered-and-returned anomaly. It is a reporting
// condition, not an invalid state.
func (t *Ticket) IsCritica() bool {
	return t.returned && t.deliveredAt != nil
}

// AssignTo binds the ticket to a member, optionally consuming an allocation.
func (t *Ticket) AssignTo(memberID uuid.UUID, allocationID *uuid.UUID) error {
	if memberID == uuid.Nil {
		return fmt.Errorf("member ID cannot be nil")
	}
	if t.memberID != nil {
		return fmt.Errorf("ticket %d is already assigned", t.number)
	}
	t.memberID = &memberID
	t.allocationID = allocationID
	return nil
}

// Detach unbinds the ticket from its member and allocation. The returned flag
// is reset: an unassigned ticket is not attributable to anyone, so it cannot
// carry a return mark. Reports whether the ticket had been marked returned so
// the caller can reconcile counts.
func (t *Ticket) Detach() (wasReturned bool, err error) {
	if t.memberID == nil {
		return false, fmt.Errorf("ticket %d is not assigned to any member", t.number)
	}
	wasReturned = t.returned
	t.memberID = nil
	t.allocationID = nil
	t.returned = false
	return wasReturned, nil
}

// MarkDelivered records the check-in time. Delivery is not reversible.
func (t *Ticket) MarkDelivered(at time.Time) error {
	if t.deliveredAt != nil {
		return fmt.Errorf("ticket %d is already checked in", t.number)
	}
	t.deliveredAt = &at
	return nil
}

// ToggleReturned flips the returned mark and returns the new value.
func (t *Ticket) ToggleReturned() bool {
	t.returned = !t.returned
	return t.returned
}
