package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_event_number;index"`
	Number        int        `gorm:"not null;uniqueIndex:idx_tickets_event_number"`
	TicketRangeID *uuid.UUID `gorm:"type:uuid;index"`
	MemberID      *uuid.UUID `gorm:"type:uuid;index"`
	AllocationID  *uuid.UUID `gorm:"type:uuid;index"`
	Name          *string    `gorm:"size:200"`
	Phone         *string    `gorm:"size:50"`
	Description   *string    `gorm:"type:text"`
	DeliveredAt   *time.Time `gorm:"index"`
	Returned      bool       `gorm:"not null;default:false"`
	Created       string     `gorm:"size:20;not null"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

func (TicketModel) TableName() string {
	return "tickets"
}

func (m *TicketModel) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
