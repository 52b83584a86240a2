package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talao/internal/domain/payment"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	model := paymentToModel(p)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model models.PaymentModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment not found")
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return paymentToDomain(&model)
}

func (r *PaymentRepository) SumActiveByMember(ctx context.Context, memberID uuid.UUID) (int, error) {
	var total *int
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.PaymentModel{}).
		Scopes(db.NotDeleted()).
		Where("member_id = ?", memberID).
		Select("sum(amount)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *PaymentRepository) SumActiveByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var total *int
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Table("payments").
		Scopes(db.NotDeletedWithAlias("payments")).
		Joins("JOIN members ON members.id = payments.member_id").
		Where("members.event_id = ?", eventID).
		Select("sum(payments.amount)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum event payments: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *PaymentRepository) SumActiveByEventBetween(ctx context.Context, eventID uuid.UUID, from, to time.Time) (int, error) {
	var total *int
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Table("payments").
		Scopes(db.NotDeletedWithAlias("payments")).
		Joins("JOIN members ON members.id = payments.member_id").
		Where("members.event_id = ?", eventID).
		Where("payments.payed_at >= ? AND payments.payed_at <= ?", from, to).
		Select("sum(payments.amount)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum event payments: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *PaymentRepository) SumActivePerMember(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]int, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		MemberID uuid.UUID
		Total    int
	}
	if err := tx.
		Table("payments").
		Scopes(db.NotDeletedWithAlias("payments")).
		Joins("JOIN members ON members.id = payments.member_id").
		Where("members.event_id = ?", eventID).
		Select("payments.member_id AS member_id, sum(payments.amount) AS total").
		Group("payments.member_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum payments per member: %w", err)
	}

	totals := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		totals[row.MemberID] = row.Total
	}
	return totals, nil
}

func (r *PaymentRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.PaymentModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment not found")
	}
	return nil
}

func paymentToModel(p *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:        p.ID(),
		MemberID:  p.MemberID(),
		Amount:    p.Amount(),
		Type:      p.Type().String(),
		VisionID:  p.VisionID(),
		PayedAt:   p.PayedAt(),
		DeletedAt: p.DeletedAt(),
		CreatedAt: p.CreatedAt(),
	}
}

func paymentToDomain(m *models.PaymentModel) (*payment.Payment, error) {
	return payment.ReconstructPayment(
		m.ID,
		m.MemberID,
		m.Amount,
		payment.Type(m.Type),
		m.VisionID,
		m.PayedAt,
		m.DeletedAt,
		m.CreatedAt,
	)
}
