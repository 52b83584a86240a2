package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/ticket"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type UnassignTicketCommand struct {
	EventID     uuid.UUID
	TicketID    uuid.UUID
	PerformedBy *uuid.UUID
}

type UnassignTicketResult struct {
	TicketID uuid.UUID
	Number   int
	// WasReturned reports that the ticket carried a return mark before the
	// detach cleared it. Callers use it to reconcile their counts.
	WasReturned bool
}

// UnassignTicketUseCase detaches a ticket from its member and records the
// custody change. Detaching also clears the returned mark.
type UnassignTicketUseCase struct {
	eventRepo  event.Repository
	ticketRepo ticket.Repository
	flowRepo   ticket.FlowRepository
	txManager  *db.TransactionManager
	logger     logger.Interface
}

func NewUnassignTicketUseCase(
	eventRepo event.Repository,
	ticketRepo ticket.Repository,
	flowRepo ticket.FlowRepository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *UnassignTicketUseCase {
	return &UnassignTicketUseCase{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		flowRepo:   flowRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (uc *UnassignTicketUseCase) Execute(ctx context.Context, cmd UnassignTicketCommand) (*UnassignTicketResult, error) {
	uc.logger.Infow("unassigning ticket", "event_id", cmd.EventID, "ticket_id", cmd.TicketID)

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

	fromMemberID := t.MemberID()
	wasReturned, err := t.Detach()
	if err != nil {
		uc.logger.Warnw("ticket is not assigned", "ticket_id", cmd.TicketID)
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.ticketRepo.Unassign(txCtx, t.ID()); err != nil {
			return err
		}
		f, err := ticket.NewFlow(t.ID(), cmd.EventID, ticket.FlowDetached, fromMemberID, nil, cmd.PerformedBy)
		if err != nil {
			return fmt.Errorf("failed to build flow: %w", err)
		}
		return uc.flowRepo.Append(txCtx, f)
	})
	if err != nil {
		uc.logger.Errorw("failed to unassign ticket", "error", err, "ticket_id", cmd.TicketID)
		return nil, fmt.Errorf("failed to unassign ticket: %w", err)
	}

	uc.logger.Infow("ticket unassigned",
		"ticket_id", t.ID(),
		"number", t.Number(),
		"was_returned", wasReturned,
	)

	return &UnassignTicketResult{
		TicketID:    t.ID(),
		Number:      t.Number(),
		WasReturned: wasReturned,
	}, nil
}
