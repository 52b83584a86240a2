package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talao/internal/domain/ticket"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

// createBatchSize keeps bulk ticket inserts below the parameter limits of the
// drivers.
const createBatchSize = 500

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	model := ticketToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	rows := make([]models.TicketModel, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, *ticketToModel(t))
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.CreateInBatches(rows, createBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create tickets: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ticket not found")
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return ticketToDomain(&model)
}

func (r *TicketRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*ticket.Ticket, error) {
	if len(ids) == 0 {
		return []*ticket.Ticket{}, nil
	}
	var rows []models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find tickets: %w", err)
	}
	return ticketsToDomain(rows)
}

func (r *TicketRepository) GetByNumber(ctx context.Context, eventID uuid.UUID, number int) (*ticket.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("event_id = ? AND number = ?", eventID, number).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ticket not found")
		}
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}
	return ticketToDomain(&model)
}

func (r *TicketRepository) ExistingNumbers(ctx context.Context, eventID uuid.UUID, numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		return []int{}, nil
	}
	var existing []int
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.TicketModel{}).
		Where("event_id = ? AND number IN ?", eventID, numbers).
		Pluck("number", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to query existing numbers: %w", err)
	}
	sort.Ints(existing)
	return existing, nil
}

func (r *TicketRepository) ListUnassignedByEvent(ctx context.Context, eventID uuid.UUID) ([]*ticket.Ticket, error) {
	var rows []models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("event_id = ? AND member_id IS NULL", eventID).
		Order("number ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list unassigned tickets: %w", err)
	}
	return ticketsToDomain(rows)
}

func (r *TicketRepository) AssignBatch(ctx context.Context, ids []uuid.UUID, memberID uuid.UUID, allocationID *uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketModel{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"member_id":     memberID,
			"allocation_id": allocationID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to assign tickets: %w", result.Error)
	}
	if result.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("expected to assign %d tickets, assigned %d", len(ids), result.RowsAffected)
	}
	return nil
}

func (r *TicketRepository) Unassign(ctx context.Context, id uuid.UUID) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"member_id":     nil,
			"allocation_id": nil,
			"returned":      false,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to unassign ticket: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket not found")
	}
	return nil
}

// MarkDelivered is the check-in write. The delivered_at IS NULL guard makes
// the existence check and the set one statement: of two concurrent scans only
// one sees RowsAffected == 1.
func (r *TicketRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ? AND delivered_at IS NULL", id).
		Update("delivered_at", at)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark ticket delivered: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *TicketRepository) SetReturned(ctx context.Context, id uuid.UUID, returned bool) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ?", id).
		Update("returned", returned)
	if result.Error != nil {
		return fmt.Errorf("failed to update returned flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket not found")
	}
	return nil
}

func (r *TicketRepository) CountByEvent(ctx context.Context, eventID uuid.UUID, filter ticket.CountFilter) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	query := applyCountFilter(tx.Model(&models.TicketModel{}).Where("event_id = ?", eventID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) CountPerType(ctx context.Context, eventID uuid.UUID, filter ticket.CountFilter) ([]ticket.TypeCount, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	query := tx.
		Table("tickets").
		Select("event_ticket_ranges.type AS type, count(1) AS count").
		Joins("JOIN event_ticket_ranges ON event_ticket_ranges.id = tickets.ticket_range_id").
		Where("tickets.event_id = ?", eventID).
		Group("event_ticket_ranges.type")
	query = applyPrefixedCountFilter(query, filter)

	var rows []ticket.TypeCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tickets per type: %w", err)
	}
	return rows, nil
}

func (r *TicketRepository) ListBindings(ctx context.Context, eventID uuid.UUID) ([]ticket.Binding, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		ID            uuid.UUID
		MemberID      *uuid.UUID
		TicketRangeID *uuid.UUID
		Returned      bool
	}
	if err := tx.
		Model(&models.TicketModel{}).
		Select("id", "member_id", "ticket_range_id", "returned").
		Where("event_id = ?", eventID).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket bindings: %w", err)
	}

	bindings := make([]ticket.Binding, 0, len(rows))
	for _, row := range rows {
		bindings = append(bindings, ticket.Binding{
			TicketID: row.ID,
			MemberID: row.MemberID,
			RangeID:  row.TicketRangeID,
			Returned: row.Returned,
		})
	}
	return bindings, nil
}

func (r *TicketRepository) ListUnreturnedByMember(ctx context.Context, memberID uuid.UUID) ([]ticket.Binding, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		ID            uuid.UUID
		MemberID      *uuid.UUID
		TicketRangeID *uuid.UUID
		Returned      bool
	}
	if err := tx.
		Model(&models.TicketModel{}).
		Select("id", "member_id", "ticket_range_id", "returned").
		Where("member_id = ? AND returned = ?", memberID, false).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list member tickets: %w", err)
	}

	bindings := make([]ticket.Binding, 0, len(rows))
	for _, row := range rows {
		bindings = append(bindings, ticket.Binding{
			TicketID: row.ID,
			MemberID: row.MemberID,
			RangeID:  row.TicketRangeID,
			Returned: row.Returned,
		})
	}
	return bindings, nil
}

func (r *TicketRepository) CountPerMemberRange(ctx context.Context, eventID uuid.UUID) ([]ticket.MemberRangeCount, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		MemberID      uuid.UUID
		TicketRangeID uuid.UUID
		Count         int
	}
	if err := tx.
		Model(&models.TicketModel{}).
		Select("member_id, ticket_range_id, count(1) AS count").
		Where("event_id = ? AND member_id IS NOT NULL AND ticket_range_id IS NOT NULL", eventID).
		Group("member_id, ticket_range_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tickets per member and range: %w", err)
	}

	counts := make([]ticket.MemberRangeCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, ticket.MemberRangeCount{
			MemberID: row.MemberID,
			RangeID:  row.TicketRangeID,
			Count:    row.Count,
		})
	}
	return counts, nil
}

func applyCountFilter(query *gorm.DB, filter ticket.CountFilter) *gorm.DB {
	if filter.LinkedOnly {
		query = query.Where("member_id IS NOT NULL")
	}
	if filter.Returned != nil {
		query = query.Where("returned = ?", *filter.Returned)
	}
	if filter.Delivered != nil {
		if *filter.Delivered {
			query = query.Where("delivered_at IS NOT NULL")
		} else {
			query = query.Where("delivered_at IS NULL")
		}
	}
	if filter.Created != nil {
		query = query.Where("created = ?", filter.Created.String())
	}
	return query
}

// applyPrefixedCountFilter qualifies the filter columns for joined queries.
func applyPrefixedCountFilter(query *gorm.DB, filter ticket.CountFilter) *gorm.DB {
	if filter.LinkedOnly {
		query = query.Where("tickets.member_id IS NOT NULL")
	}
	if filter.Returned != nil {
		query = query.Where("tickets.returned = ?", *filter.Returned)
	}
	if filter.Delivered != nil {
		if *filter.Delivered {
			query = query.Where("tickets.delivered_at IS NOT NULL")
		} else {
			query = query.Where("tickets.delivered_at IS NULL")
		}
	}
	if filter.Created != nil {
		query = query.Where("tickets.created = ?", filter.Created.String())
	}
	return query
}

func ticketToModel(t *ticket.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:            t.ID(),
		EventID:       t.EventID(),
		Number:        t.Number(),
		TicketRangeID: t.RangeID(),
		MemberID:      t.MemberID(),
		AllocationID:  t.AllocationID(),
		Name:          t.Name(),
		Phone:         t.Phone(),
		Description:   t.Description(),
		DeliveredAt:   t.DeliveredAt(),
		Returned:      t.Returned(),
		Created:       t.Created().String(),
		CreatedAt:     t.CreatedAt(),
	}
}

func ticketToDomain(m *models.TicketModel) (*ticket.Ticket, error) {
	return ticket.ReconstructTicket(
		m.ID,
		m.EventID,
		m.Number,
		m.TicketRangeID,
		m.MemberID,
		m.AllocationID,
		m.Name,
		m.Phone,
		m.Description,
		m.DeliveredAt,
		m.Returned,
		ticket.Created(m.Created),
		m.CreatedAt,
	)
}

func ticketsToDomain(rows []models.TicketModel) ([]*ticket.Ticket, error) {
	result := make([]*ticket.Ticket, 0, len(rows))
	for i := range rows {
		t, err := ticketToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}
