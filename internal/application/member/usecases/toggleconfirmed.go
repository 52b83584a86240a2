package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type ToggleConfirmedCommand struct {
	EventID  uuid.UUID
	MemberID uuid.UUID
}

type ToggleConfirmedResult struct {
	MemberID  uuid.UUID
	Confirmed bool
}

// ToggleConfirmedUseCase flips the member's confirmed-but-unpaid override.
// Reconciliation reports the flag alongside the computed balance; it never
// changes the balance itself.
type ToggleConfirmedUseCase struct {
	eventRepo  event.Repository
	memberRepo member.Repository
	logger     logger.Interface
}

func NewToggleConfirmedUseCase(
	eventRepo event.Repository,
	memberRepo member.Repository,
	logger logger.Interface,
) *ToggleConfirmedUseCase {
	return &ToggleConfirmedUseCase{
		eventRepo:  eventRepo,
		memberRepo: memberRepo,
		logger:     logger,
	}
}

func (uc *ToggleConfirmedUseCase) Execute(ctx context.Context, cmd ToggleConfirmedCommand) (*ToggleConfirmedResult, error) {
	uc.logger.Infow("toggling confirmed override", "event_id", cmd.EventID, "member_id", cmd.MemberID)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	m, err := uc.memberRepo.GetByID(ctx, cmd.MemberID)
	if err != nil || m.EventID() != cmd.EventID {
		uc.logger.Warnw("member not found", "member_id", cmd.MemberID, "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("member not found")
	}

	confirmed := m.ToggleConfirmed()
	if err := uc.memberRepo.UpdateConfirmed(ctx, m.ID(), confirmed); err != nil {
		uc.logger.Errorw("failed to update confirmed override", "error", err, "member_id", m.ID())
		return nil, fmt.Errorf("failed to update confirmed override: %w", err)
	}

	uc.logger.Infow("confirmed override toggled", "member_id", m.ID(), "confirmed", confirmed)

	return &ToggleConfirmedResult{MemberID: m.ID(), Confirmed: confirmed}, nil
}
