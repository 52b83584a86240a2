package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talao/internal/domain/allocation"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) Upsert(ctx context.Context, a *allocation.Allocation) error {
	model := allocationToModel(a)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_id"}, {Name: "event_ticket_range_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert allocation: %w", err)
	}
	return nil
}

func (r *AllocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	var model models.MemberTicketAllocationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("allocation not found")
		}
		return nil, fmt.Errorf("failed to find allocation: %w", err)
	}
	return allocationToDomain(&model)
}

func (r *AllocationRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*allocation.Allocation, error) {
	var rows []models.MemberTicketAllocationModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("member_id = ?", memberID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}

	result := make([]*allocation.Allocation, 0, len(rows))
	for i := range rows {
		a, err := allocationToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// ListDeficitsByEvent computes quantity minus linked ticket count per
// allocation in SQL and keeps only the positive ones. Ordering is the
// assignment priority: member rank ascending with nulls last, allocation
// creation time as tiebreak.
func (r *AllocationRepository) ListDeficitsByEvent(ctx context.Context, eventID uuid.UUID) ([]allocation.Deficit, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		AllocationID uuid.UUID
		MemberID     uuid.UUID
		RangeID      uuid.UUID
		Quantity     int
		LinkedCount  int
		MemberOrder  *int
		CreatedAt    time.Time
	}

	err := tx.Raw(`
		SELECT
			a.id AS allocation_id,
			a.member_id AS member_id,
			a.event_ticket_range_id AS range_id,
			a.quantity AS quantity,
			COALESCE(linked.linked_count, 0) AS linked_count,
			m.member_order AS member_order,
			a.created_at AS created_at
		FROM member_ticket_allocations a
		JOIN members m ON m.id = a.member_id
		LEFT JOIN (
			SELECT allocation_id, count(1) AS linked_count
			FROM tickets
			WHERE allocation_id IS NOT NULL
			GROUP BY allocation_id
		) linked ON linked.allocation_id = a.id
		WHERE m.event_id = ?
		  AND a.quantity > COALESCE(linked.linked_count, 0)
		ORDER BY CASE WHEN m.member_order IS NULL THEN 1 ELSE 0 END,
			m.member_order ASC,
			a.created_at ASC`, eventID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute allocation deficits: %w", err)
	}

	deficits := make([]allocation.Deficit, 0, len(rows))
	for _, row := range rows {
		deficits = append(deficits, allocation.Deficit{
			AllocationID: row.AllocationID,
			MemberID:     row.MemberID,
			RangeID:      row.RangeID,
			Quantity:     row.Quantity,
			LinkedCount:  row.LinkedCount,
			MemberOrder:  row.MemberOrder,
			CreatedAt:    row.CreatedAt,
		})
	}
	return deficits, nil
}

func allocationToModel(a *allocation.Allocation) *models.MemberTicketAllocationModel {
	return &models.MemberTicketAllocationModel{
		ID:                 a.ID(),
		MemberID:           a.MemberID(),
		EventTicketRangeID: a.RangeID(),
		Quantity:           a.Quantity(),
		CreatedAt:          a.CreatedAt(),
	}
}

func allocationToDomain(m *models.MemberTicketAllocationModel) (*allocation.Allocation, error) {
	return allocation.ReconstructAllocation(
		m.ID,
		m.MemberID,
		m.EventTicketRangeID,
		m.Quantity,
		m.CreatedAt,
	)
}
