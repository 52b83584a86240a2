package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRangeModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID uuid.UUID `gorm:"type:uuid;not null;index"`
	// start_number/end_number instead of start/end: END is a reserved word
	StartNumber int    `gorm:"not null"`
	EndNumber   int    `gorm:"not null"`
	Type        string `gorm:"size:100;not null"`
	Cost        *int
	GeneratedAt *time.Time
	// explicit tombstone, reads filter it via db.NotDeleted
	DeletedAt *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (TicketRangeModel) TableName() string {
	return "event_ticket_ranges"
}

func (m *TicketRangeModel) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
