package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"talao/internal/domain/allocation"
	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

// AllocationInput is one promised quantity from a range for the new member.
type AllocationInput struct {
	RangeID  uuid.UUID
	Quantity int
}

type CreateMemberCommand struct {
	EventID     uuid.UUID
	SessionID   uuid.UUID
	Name        string
	Order       *int
	VisionID    *string
	Register    *string
	Allocations []AllocationInput
}

type CreateMemberResult struct {
	MemberID uuid.UUID
}

// CreateMemberUseCase registers a member and their per-range allocations in
// one transaction. When the event has no automatic per-member quantity, an
// allocation is required for every active range so the assignment engine never
// sees a member with undefined demand.
type CreateMemberUseCase struct {
	eventRepo      event.Repository
	rangeRepo      ticketrange.Repository
	memberRepo     member.Repository
	allocationRepo allocation.Repository
	txManager      *db.TransactionManager
	logger         logger.Interface
}

func NewCreateMemberUseCase(
	eventRepo event.Repository,
	rangeRepo ticketrange.Repository,
	memberRepo member.Repository,
	allocationRepo allocation.Repository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *CreateMemberUseCase {
	return &CreateMemberUseCase{
		eventRepo:      eventRepo,
		rangeRepo:      rangeRepo,
		memberRepo:     memberRepo,
		allocationRepo: allocationRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

func (uc *CreateMemberUseCase) Execute(ctx context.Context, cmd CreateMemberCommand) (*CreateMemberResult, error) {
	uc.logger.Infow("creating member", "event_id", cmd.EventID, "name", cmd.Name)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	ranges, err := uc.rangeRepo.ListActiveByEvent(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Errorw("failed to list ranges", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to list ranges: %w", err)
	}

	known := make(map[uuid.UUID]struct{}, len(ranges))
	for _, rng := range ranges {
		known[rng.ID()] = struct{}{}
	}
	provided := make(map[uuid.UUID]int, len(cmd.Allocations))
	for _, a := range cmd.Allocations {
		if _, ok := known[a.RangeID]; !ok {
			return nil, errors.NewValidationError(
				fmt.Sprintf("allocation references unknown range %s", a.RangeID),
			)
		}
		if a.Quantity < 0 {
			return nil, errors.NewValidationError("allocation quantity cannot be negative")
		}
		provided[a.RangeID] = a.Quantity
	}

	if ev.AutoTicketsPerMember() == nil {
		var missing []string
		for _, rng := range ranges {
			if _, ok := provided[rng.ID()]; !ok {
				// Range IDs, not types: types are a label and may repeat.
				missing = append(missing, fmt.Sprintf("%s (%s)", rng.ID(), rng.Type()))
			}
		}
		if len(missing) > 0 {
			uc.logger.Warnw("member is missing allocations", "event_id", cmd.EventID, "ranges", missing)
			return nil, errors.NewValidationError(
				"allocations are required for every range, missing: " + strings.Join(missing, ", "),
			)
		}
	}

	m, err := member.NewMember(cmd.EventID, cmd.SessionID, cmd.Name, cmd.Order, cmd.VisionID, cmd.Register)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.memberRepo.Save(txCtx, m); err != nil {
			return fmt.Errorf("failed to save member: %w", err)
		}
		for rangeID, quantity := range provided {
			a, err := allocation.NewAllocation(m.ID(), rangeID, quantity)
			if err != nil {
				return fmt.Errorf("failed to build allocation: %w", err)
			}
			if err := uc.allocationRepo.Upsert(txCtx, a); err != nil {
				return fmt.Errorf("failed to save allocation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to create member", "error", err, "event_id", cmd.EventID)
		return nil, err
	}

	uc.logger.Infow("member created", "member_id", m.ID(), "event_id", cmd.EventID)

	return &CreateMemberResult{MemberID: m.ID()}, nil
}
