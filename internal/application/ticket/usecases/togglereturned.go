package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/ticket"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type ToggleReturnedCommand struct {
	EventID  uuid.UUID
	TicketID uuid.UUID
}

type ToggleReturnedResult struct {
	TicketID uuid.UUID
	Number   int
	Returned bool
}

// ToggleReturnedUseCase flips the returned mark on a ticket. The mark is a
// reporting state, not a custody change, so no flow is appended.
type ToggleReturnedUseCase struct {
	eventRepo  event.Repository
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewToggleReturnedUseCase(
	eventRepo event.Repository,
	ticketRepo ticket.Repository,
	logger logger.Interface,
) *ToggleReturnedUseCase {
	return &ToggleReturnedUseCase{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

func (uc *ToggleReturnedUseCase) Execute(ctx context.Context, cmd ToggleReturnedCommand) (*ToggleReturnedResult, error) {
	uc.logger.Infow("toggling returned mark", "event_id", cmd.EventID, "ticket_id", cmd.TicketID)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	t, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil || t.EventID() != cmd.EventID {
		uc.logger.Warnw("ticket not found", "ticket_id", cmd.TicketID, "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("ticket not found")
	}

	returned := t.ToggleReturned()
	if err := uc.ticketRepo.SetReturned(ctx, t.ID(), returned); err != nil {
		uc.logger.Errorw("failed to update returned mark", "error", err, "ticket_id", t.ID())
		return nil, fmt.Errorf("failed to update returned mark: %w", err)
	}

	uc.logger.Infow("returned mark toggled",
		"ticket_id", t.ID(),
		"number", t.Number(),
		"returned", returned,
	)

	return &ToggleReturnedResult{
		TicketID: t.ID(),
		Number:   t.Number(),
		Returned: returned,
	}, nil
}
