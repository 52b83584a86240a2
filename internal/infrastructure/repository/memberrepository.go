package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talao/internal/domain/member"
	"talao/internal/infrastructure/persistence/models"
	db "talao/internal/shared/db"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Save(ctx context.Context, m *member.Member) error {
	model := memberToModel(m)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*member.Member, error) {
	var model models.MemberModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("member not found")
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	return memberToDomain(&model)
}

func (r *MemberRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*member.Member, error) {
	var rows []models.MemberModel
	tx := db.GetTxFromContext(ctx, r.db)

	// NULLS LAST spelled out as a CASE so the ordering also holds on sqlite
	if err := tx.
		Where("event_id = ?", eventID).
		Order("CASE WHEN member_order IS NULL THEN 1 ELSE 0 END, member_order ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	result := make([]*member.Member, 0, len(rows))
	for i := range rows {
		m, err := memberToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

func (r *MemberRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Model(&models.MemberModel{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

func (r *MemberRepository) UpdateConfirmed(ctx context.Context, id uuid.UUID, confirmed bool) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.MemberModel{}).
		Where("id = ?", id).
		Update("all_confirmed_but_not_yet_fully_paid", confirmed)
	if result.Error != nil {
		return fmt.Errorf("failed to update member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("member not found")
	}
	return nil
}

func memberToModel(m *member.Member) *models.MemberModel {
	return &models.MemberModel{
		ID:                             m.ID(),
		EventID:                        m.EventID(),
		SessionID:                      m.SessionID(),
		Name:                           m.Name(),
		CleanName:                      m.CleanName(),
		Register:                       m.Register(),
		VisionID:                       m.VisionID(),
		Order:                          m.Order(),
		AllConfirmedButNotYetFullyPaid: m.AllConfirmedButNotYetFullyPaid(),
		CreatedAt:                      m.CreatedAt(),
	}
}

func memberToDomain(m *models.MemberModel) (*member.Member, error) {
	return member.ReconstructMember(
		m.ID,
		m.EventID,
		m.SessionID,
		m.Name,
		m.CleanName,
		m.Register,
		m.VisionID,
		m.Order,
		m.AllConfirmedButNotYetFullyPaid,
		m.CreatedAt,
	)
}
