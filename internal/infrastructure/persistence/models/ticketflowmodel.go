package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketFlowModel rows are append-only; nothing in the codebase updates or
// deletes them.
type TicketFlowModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TicketID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	EventID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type         string     `gorm:"size:20;not null"`
	FromMemberID *uuid.UUID `gorm:"type:uuid"`
	ToMemberID   *uuid.UUID `gorm:"type:uuid"`
	PerformedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time  `gorm:"not null;index"`
}

func (TicketFlowModel) TableName() string {
	return "ticket_flows"
}

func (m *TicketFlowModel) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
