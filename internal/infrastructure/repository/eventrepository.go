package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talao/internal/domain/event"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	var model models.EventModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return eventToDomain(&model)
}

func eventToDomain(m *models.EventModel) (*event.Event, error) {
	return event.ReconstructEvent(m.ID, m.Name, m.ReadOnly, m.AutoTicketsPerMember, m.CreatedAt)
}
