package ticket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FlowType is the kind of custody change a flow records.
type FlowType string

const (
	FlowAssigned  FlowType = "ASSIGNED"
	FlowDetached  FlowType = "DETACHED"
	FlowCheckedIn FlowType = "CHECKED_IN"
)

func (f FlowType) IsValid() bool {
	switch f {
	case FlowAssigned, FlowDetached, FlowCheckedIn:
		return true
	}
	return false
}

func (f FlowType) String() string {
	return string(f)
}

// Flow is one append-only audit record of a ticket custody change. Flows are
// never updated or deleted.
type Flow struct {
	id           uuid.UUID
	ticketID     uuid.UUID
	eventID      uuid.UUID
	flowType     FlowType
	fromMemberID *uuid.UUID
	toMemberID   *uuid.UUID
	performedBy  *uuid.UUID
	createdAt    time.Time
}

func NewFlow(
	ticketID uuid.UUID,
	eventID uuid.UUID,
	flowType FlowType,
	fromMemberID *uuid.UUID,
	toMemberID *uuid.UUID,
	performedBy *uuid.UUID,
) (*Flow, error) {
	if ticketID == uuid.Nil {
		return nil, fmt.Errorf("ticket ID is required")
	}
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID is required")
	}
	if !flowType.IsValid() {
		return nil, fmt.Errorf("invalid flow type: %s", flowType)
	}
	return &Flow{
		id:           uuid.New(),
		ticketID:     ticketID,
		eventID:      eventID,
		flowType:     flowType,
		fromMemberID: fromMemberID,
		toMemberID:   toMemberID,
		performedBy:  performedBy,
		createdAt:    time.Now(),
	}, nil
}

func ReconstructFlow(
	id uuid.UUID,
	ticketID uuid.UUID,
	eventID uuid.UUID,
	flowType FlowType,
	fromMemberID *uuid.UUID,
	toMemberID *uuid.UUID,
	performedBy *uuid.UUID,
	createdAt time.Time,
) (*Flow, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("flow ID cannot be nil")
	}
	if !flowType.IsValid() {
		return nil, fmt.Errorf("invalid flow type: %s", flowType)
	}
	return &Flow{
		id:           id,
		ticketID:     ticketID,
		eventID:      eventID,
		flowType:     flowType,
		fromMemberID: fromMemberID,
		toMemberID:   toMemberID,
		performedBy:  performedBy,
		createdAt:    createdAt,
	}, nil
}

func (f *Flow) ID() uuid.UUID {
	return f.id
}

func (f *Flow) TicketID() uuid.UUID {
	return f.ticketID
}

func (f *Flow) EventID() uuid.UUID {
	return f.eventID
}

func (f *Flow) Type() FlowType {
	return f.flowType
}

func (f *Flow) FromMemberID() *uuid.UUID {
	return f.fromMemberID
}

func (f *Flow) ToMemberID() *uuid.UUID {
	return f.toMemberID
}

func (f *Flow) PerformedBy() *uuid.UUID {
	return f.performedBy
}

func (f *Flow) CreatedAt() time.Time {
	return f.createdAt
}
