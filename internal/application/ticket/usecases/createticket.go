package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type CreateTicketCommand struct {
	EventID     uuid.UUID
	Number      int
	RangeID     *uuid.UUID
	MemberID    *uuid.UUID
	Name        *string
	Phone       *string
	Description *string
}

type CreateTicketResult struct {
	TicketID uuid.UUID
	Number   int
}

// CreateTicketUseCase registers a single ticket after the initial lot, for
// example one sold on paper and typed in later. The number must be unused and,
// when a range is given, inside its bounds.
type CreateTicketUseCase struct {
	eventRepo  event.Repository
	rangeRepo  ticketrange.Repository
	memberRepo member.Repository
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewCreateTicketUseCase(
	eventRepo event.Repository,
	rangeRepo ticketrange.Repository,
	memberRepo member.Repository,
	ticketRepo ticket.Repository,
	logger logger.Interface,
) *CreateTicketUseCase {
	return &CreateTicketUseCase{
		eventRepo:  eventRepo,
		rangeRepo:  rangeRepo,
		memberRepo: memberRepo,
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

func (uc *CreateTicketUseCase) Execute(ctx context.Context, cmd CreateTicketCommand) (*CreateTicketResult, error) {
	uc.logger.Infow("creating ticket", "event_id", cmd.EventID, "number", cmd.Number)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	existing, err := uc.ticketRepo.ExistingNumbers(ctx, cmd.EventID, []int{cmd.Number})
	if err != nil {
		uc.logger.Errorw("failed to check ticket number", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to check ticket number: %w", err)
	}
	if len(existing) > 0 {
		uc.logger.Warnw("ticket number already exists", "event_id", cmd.EventID, "number", cmd.Number)
		return nil, errors.NewValidationError(fmt.Sprintf("ticket %d already exists", cmd.Number))
	}

	if cmd.RangeID != nil {
		rng, err := uc.rangeRepo.GetByID(ctx, *cmd.RangeID)
		if err != nil || rng.EventID() != cmd.EventID || rng.IsDeleted() {
			return nil, errors.NewValidationError("ticket range does not belong to this event")
		}
		if !rng.Contains(cmd.Number) {
			return nil, errors.NewValidationError(
				fmt.Sprintf("number %d is outside range %d-%d", cmd.Number, rng.Start(), rng.End()),
			)
		}
	}

	if cmd.MemberID != nil {
		m, err := uc.memberRepo.GetByID(ctx, *cmd.MemberID)
		if err != nil || m.EventID() != cmd.EventID {
			return nil, errors.NewValidationError("member does not belong to this event")
		}
	}

	t, err := ticket.NewImportedTicket(cmd.EventID, cmd.Number, cmd.RangeID, cmd.MemberID, cmd.Name, cmd.Phone, cmd.Description)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.ticketRepo.Save(ctx, t); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError(fmt.Sprintf("ticket %d already exists", cmd.Number))
		}
		uc.logger.Errorw("failed to save ticket", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to save ticket: %w", err)
	}

	uc.logger.Infow("ticket created", "ticket_id", t.ID(), "number", t.Number())

	return &CreateTicketResult{TicketID: t.ID(), Number: t.Number()}, nil
}
