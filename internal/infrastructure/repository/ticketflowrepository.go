package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talao/internal/domain/ticket"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

// TicketFlowRepository only ever inserts and reads. The audit trail has no
// update or delete path on purpose.
type TicketFlowRepository struct {
	db *gorm.DB
}

func NewTicketFlowRepository(db *gorm.DB) *TicketFlowRepository {
	return &TicketFlowRepository{db: db}
}

func (r *TicketFlowRepository) Append(ctx context.Context, f *ticket.Flow) error {
	model := flowToModel(f)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to append ticket flow: %w", err)
	}
	return nil
}

func (r *TicketFlowRepository) AppendBatch(ctx context.Context, flows []*ticket.Flow) error {
	if len(flows) == 0 {
		return nil
	}
	rows := make([]models.TicketFlowModel, 0, len(flows))
	for _, f := range flows {
		rows = append(rows, *flowToModel(f))
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.CreateInBatches(rows, createBatchSize).Error; err != nil {
		return fmt.Errorf("failed to append ticket flows: %w", err)
	}
	return nil
}

func (r *TicketFlowRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]*ticket.Flow, error) {
	var rows []models.TicketFlowModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket flows: %w", err)
	}

	result := make([]*ticket.Flow, 0, len(rows))
	for i := range rows {
		f, err := flowToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, nil
}

func (r *TicketFlowRepository) CountByTicket(ctx context.Context, ticketID uuid.UUID) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.TicketFlowModel{}).
		Where("ticket_id = ?", ticketID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ticket flows: %w", err)
	}
	return count, nil
}

func flowToModel(f *ticket.Flow) *models.TicketFlowModel {
	return &models.TicketFlowModel{
		ID:           f.ID(),
		TicketID:     f.TicketID(),
		EventID:      f.EventID(),
		Type:         f.Type().String(),
		FromMemberID: f.FromMemberID(),
		ToMemberID:   f.ToMemberID(),
		PerformedBy:  f.PerformedBy(),
		CreatedAt:    f.CreatedAt(),
	}
}

func flowToDomain(m *models.TicketFlowModel) (*ticket.Flow, error) {
	return ticket.ReconstructFlow(
		m.ID,
		m.TicketID,
		m.EventID,
		ticket.FlowType(m.Type),
		m.FromMemberID,
		m.ToMemberID,
		m.PerformedBy,
		m.CreatedAt,
	)
}
