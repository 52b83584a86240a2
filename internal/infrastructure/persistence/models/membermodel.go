package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"size:200;not null"`
	CleanName string    `gorm:"size:200;not null;index"`
	Register  *string   `gorm:"size:100"`
	VisionID  *string   `gorm:"size:100"`
	// member_order instead of "order": keeps raw priority queries free of
	// keyword quoting
	Order                          *int      `gorm:"column:member_order;index"`
	AllConfirmedButNotYetFullyPaid bool      `gorm:"not null;default:false"`
	CreatedAt                      time.Time `gorm:"not null"`
	UpdatedAt                      time.Time `gorm:"not null"`
}

func (MemberModel) TableName() string {
	return "members"
}

func (m *MemberModel) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
