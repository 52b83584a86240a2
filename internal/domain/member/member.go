// Package member holds the member aggregate: a person that sells numbered
// tickets for an event. The assignment engine reads the order rank for
// priority; reconciliation reads the confirmed-but-unpaid override flag.
package member

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Member struct {
	id        uuid.UUID
	eventID   uuid.UUID
	sessionID uuid.UUID
	name      string
	cleanName string
	register  *string
	visionID  *string
	order     *int
	// manual override flag: the member confirmed they will pay for everything
	// but has not transferred the full amount yet
	allConfirmedButNotYetFullyPaid bool
	createdAt                      time.Time
}

func NewMember(
	eventID uuid.UUID,
	sessionID uuid.UUID,
	name string,
	order *int,
	visionID *string,
	register *string,
) (*Member, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID is required")
	}
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("session ID is required")
	}
	if len(strings.TrimSpace(name)) == 0 {
		return nil, fmt.Errorf("member name is required")
	}

	return &Member{
		id:        uuid.New(),
		eventID:   eventID,
		sessionID: sessionID,
		name:      name,
		cleanName: NormalizeName(name),
		register:  register,
		visionID:  visionID,
		order:     order,
		createdAt: time.Now(),
	}, nil
}

func ReconstructMember(
	id uuid.UUID,
	eventID uuid.UUID,
	sessionID uuid.UUID,
	name string,
	cleanName string,
	register *string,
	visionID *string,
	order *int,
	allConfirmedButNotYetFullyPaid bool,
	createdAt time.Time,
) (*Member, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("member ID cannot be nil")
	}
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("event ID is required")
	}
	return &Member{
		id:                             id,
		eventID:                        eventID,
		sessionID:                      sessionID,
		name:                           name,
		cleanName:                      cleanName,
		register:                       register,
		visionID:                       visionID,
		order:                          order,
		allConfirmedButNotYetFullyPaid: allConfirmedButNotYetFullyPaid,
		createdAt:                      createdAt,
	}, nil
}

// NormalizeName produces the lookup form of a member name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (m *Member) ID() uuid.UUID {
	return m.id
}

func (m *Member) EventID() uuid.UUID {
	return m.eventID
}

func (m *Member) SessionID() uuid.UUID {
	return m.sessionID
}

func (m *Member) Name() string {
	return m.name
}

func (m *Member) CleanName() string {
	return m.cleanName
}

func (m *Member) Register() *string {
	return m.register
}

func (m *Member) VisionID() *string {
	return m.visionID
}

// Order is the assignment priority rank; lower is served first, nil sorts
// last.
func (m *Member) Order() *int {
	return m.order
}

func (m *Member) AllConfirmedButNotYetFullyPaid() bool {
	return m.allConfirmedButNotYetFullyPaid
}

func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

// ToggleConfirmed flips the confirmed-but-unpaid override and returns the new
// value.
func (m *Member) ToggleConfirmed() bool {
	m.allConfirmedButNotYetFullyPaid = !m.allConfirmedButNotYetFullyPaid
	return m.allConfirmedButNotYetFullyPaid
}
