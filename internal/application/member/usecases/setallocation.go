package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/allocation"
	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type SetAllocationCommand struct {
	EventID  uuid.UUID
	MemberID uuid.UUID
	RangeID  uuid.UUID
	Quantity int
}

type SetAllocationResult struct {
	AllocationID uuid.UUID
	Quantity     int
}

// SetAllocationUseCase upserts a member's promised quantity from one range.
// Quantity zero is valid: the member keeps the tickets already bound but the
// assignment engine stops topping them up.
type SetAllocationUseCase struct {
	eventRepo      event.Repository
	rangeRepo      ticketrange.Repository
	memberRepo     member.Repository
	allocationRepo allocation.Repository
	logger         logger.Interface
}

func NewSetAllocationUseCase(
	eventRepo event.Repository,
	rangeRepo ticketrange.Repository,
	memberRepo member.Repository,
	allocationRepo allocation.Repository,
	logger logger.Interface,
) *SetAllocationUseCase {
	return &SetAllocationUseCase{
		eventRepo:      eventRepo,
		rangeRepo:      rangeRepo,
		memberRepo:     memberRepo,
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

func (uc *SetAllocationUseCase) Execute(ctx context.Context, cmd SetAllocationCommand) (*SetAllocationResult, error) {
	uc.logger.Infow("setting allocation",
		"event_id", cmd.EventID,
		"member_id", cmd.MemberID,
		"range_id", cmd.RangeID,
		"quantity", cmd.Quantity,
	)

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

	rng, err := uc.rangeRepo.GetByID(ctx, cmd.RangeID)
	if err != nil || rng.EventID() != cmd.EventID || rng.IsDeleted() {
		uc.logger.Warnw("range not found", "range_id", cmd.RangeID, "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("ticket range not found")
	}

	a, err := allocation.NewAllocation(cmd.MemberID, cmd.RangeID, cmd.Quantity)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.allocationRepo.Upsert(ctx, a); err != nil {
		uc.logger.Errorw("failed to save allocation", "error", err, "member_id", cmd.MemberID)
		return nil, fmt.Errorf("failed to save allocation: %w", err)
	}

	uc.logger.Infow("allocation set", "allocation_id", a.ID(), "member_id", cmd.MemberID, "quantity", cmd.Quantity)

	return &SetAllocationResult{AllocationID: a.ID(), Quantity: cmd.Quantity}, nil
}
