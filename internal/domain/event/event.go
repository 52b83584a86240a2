// Package event holds the event aggregate as seen by the ticket engine. Events
// are created and administered elsewhere; the engine only reads them to gate
// mutations (read-only flag) and to pick the allocation mode.
package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	id                   uuid.UUID
	name                 string
	readOnly             bool
	autoTicketsPerMember *int
	createdAt            time.Time
}

// ReconstructEvent rebuilds an event from persistence. The engine never
// creates events itself.
func ReconstructEvent(
	id uuid.UUID,
	name string,
	readOnly bool,
	autoTicketsPerMember *int,
	createdAt time.Time,
) (*Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("event ID cannot be nil")
	}
	if len(name) == 0 {
		return nil, fmt.Errorf("event name is required")
	}
	return &Event{
		id:                   id,
		name:                 name,
		readOnly:             readOnly,
		autoTicketsPerMember: autoTicketsPerMember,
		createdAt:            createdAt,
	}, nil
}

func (e *Event) ID() uuid.UUID {
	return e.id
}

func (e *Event) Name() string {
	return e.name
}

// ReadOnly reports whether every mutating engine operation against the event
// must be rejected.
func (e *Event) ReadOnly() bool {
	return e.readOnly
}

// AutoTicketsPerMember returns the implicit per-range quantity every member
// gets when the event skips explicit allocations, or nil when allocations are
// explicit.
func (e *Event) AutoTicketsPerMember() *int {
	return e.autoTicketsPerMember
}

func (e *Event) CreatedAt() time.Time {
	return e.createdAt
}
