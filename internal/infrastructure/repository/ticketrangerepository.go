package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talao/internal/domain/ticketrange"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

type TicketRangeRepository struct {
	db *gorm.DB
}

func NewTicketRangeRepository(db *gorm.DB) *TicketRangeRepository {
	return &TicketRangeRepository{db: db}
}

func (r *TicketRangeRepository) Save(ctx context.Context, rng *ticketrange.TicketRange) error {
	model := rangeToModel(rng)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save ticket range: %w", err)
	}
	return nil
}

func (r *TicketRangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*ticketrange.TicketRange, error) {
	var model models.TicketRangeModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ticket range not found")
		}
		return nil, fmt.Errorf("failed to find ticket range: %w", err)
	}

	return rangeToDomain(&model)
}

func (r *TicketRangeRepository) ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*ticketrange.TicketRange, error) {
	var rows []models.TicketRangeModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Scopes(db.NotDeleted()).
		Where("event_id = ?", eventID).
		Order("start_number ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket ranges: %w", err)
	}

	result := make([]*ticketrange.TicketRange, 0, len(rows))
	for i := range rows {
		rng, err := rangeToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, rng)
	}
	return result, nil
}

func (r *TicketRangeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*ticketrange.TicketRange, error) {
	var rows []models.TicketRangeModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("event_id = ?", eventID).
		Order("start_number ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket ranges: %w", err)
	}

	result := make([]*ticketrange.TicketRange, 0, len(rows))
	for i := range rows {
		rng, err := rangeToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, rng)
	}
	return result, nil
}

func (r *TicketRangeRepository) FindOverlapping(ctx context.Context, eventID uuid.UUID, start, end int, excludeID *uuid.UUID) (*ticketrange.TicketRange, error) {
	var model models.TicketRangeModel
	tx := db.GetTxFromContext(ctx, r.db)

	query := tx.
		Scopes(db.NotDeleted()).
		Where("event_id = ?", eventID).
		Where("start_number <= ? AND end_number >= ?", end, start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	if err := query.Order("start_number ASC").First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query overlapping ranges: %w", err)
	}

	return rangeToDomain(&model)
}

func (r *TicketRangeRepository) UpdateBounds(ctx context.Context, id uuid.UUID, start, end int) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketRangeModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"start_number": start,
			"end_number":   end,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update range bounds: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket range not found")
	}
	return nil
}

func (r *TicketRangeRepository) SetGeneratedAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.TicketRangeModel{}).
		Where("id = ?", id).
		Update("generated_at", at).Error; err != nil {
		return fmt.Errorf("failed to set generated_at: %w", err)
	}
	return nil
}

func rangeToModel(rng *ticketrange.TicketRange) *models.TicketRangeModel {
	return &models.TicketRangeModel{
		ID:          rng.ID(),
		EventID:     rng.EventID(),
		StartNumber: rng.Start(),
		EndNumber:   rng.End(),
		Type:        rng.Type(),
		Cost:        rng.Cost(),
		GeneratedAt: rng.GeneratedAt(),
		DeletedAt:   rng.DeletedAt(),
		CreatedAt:   rng.CreatedAt(),
	}
}

func rangeToDomain(m *models.TicketRangeModel) (*ticketrange.TicketRange, error) {
	return ticketrange.ReconstructTicketRange(
		m.ID,
		m.EventID,
		m.StartNumber,
		m.EndNumber,
		m.Type,
		m.Cost,
		m.GeneratedAt,
		m.DeletedAt,
		m.CreatedAt,
	)
}
