package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberTicketAllocationModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_member_range"`
	EventTicketRangeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_allocations_member_range"`
	Quantity           int       `gorm:"not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (MemberTicketAllocationModel) TableName() string {
	return "member_ticket_allocations"
}

func (m *MemberTicketAllocationModel) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
