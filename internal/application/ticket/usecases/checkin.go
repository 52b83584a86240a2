package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/ticket"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type CheckInCommand struct {
	EventID     uuid.UUID
	Number      int
	PerformedBy *uuid.UUID
}

type CheckInResult struct {
	TicketID    uuid.UUID
	Number      int
	MemberID    *uuid.UUID
	Name        *string
	Phone       *string
	Description *string
	DeliveredAt time.Time
	// AlreadyCheckedIn is set when the ticket had been delivered before this
	// call. The repeated check-in succeeds but writes nothing.
	AlreadyCheckedIn bool
}

// CheckInUseCase marks a ticket delivered at the door, looked up by its
// printed number. The update is conditional on the ticket not being delivered
// yet, so of two concurrent scans exactly one records the delivery and the
// other reports it as already checked in. Only the winning scan appends a
// flow.
type CheckInUseCase struct {
	eventRepo  event.Repository
	ticketRepo ticket.Repository
	flowRepo   ticket.FlowRepository
	txManager  *db.TransactionManager
	logger     logger.Interface
}

func NewCheckInUseCase(
	eventRepo event.Repository,
	ticketRepo ticket.Repository,
	flowRepo ticket.FlowRepository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *CheckInUseCase {
	return &CheckInUseCase{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		flowRepo:   flowRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (uc *CheckInUseCase) Execute(ctx context.Context, cmd CheckInCommand) (*CheckInResult, error) {
	uc.logger.Infow("checking in ticket", "event_id", cmd.EventID, "number", cmd.Number)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	t, err := uc.ticketRepo.GetByNumber(ctx, cmd.EventID, cmd.Number)
	if err != nil {
		uc.logger.Warnw("ticket not found", "event_id", cmd.EventID, "number", cmd.Number)
		return nil, errors.NewNotFoundError(fmt.Sprintf("ticket %d not found", cmd.Number))
	}

	now := time.Now()
	var won bool
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		won, err = uc.ticketRepo.MarkDelivered(txCtx, t.ID(), now)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		f, err := ticket.NewFlow(t.ID(), cmd.EventID, ticket.FlowCheckedIn, t.MemberID(), t.MemberID(), cmd.PerformedBy)
		if err != nil {
			return fmt.Errorf("failed to build flow: %w", err)
		}
		return uc.flowRepo.Append(txCtx, f)
	})
	if err != nil {
		uc.logger.Errorw("failed to check in ticket", "error", err, "ticket_id", t.ID())
		return nil, fmt.Errorf("failed to check in ticket: %w", err)
	}

	result := &CheckInResult{
		TicketID:    t.ID(),
		Number:      t.Number(),
		MemberID:    t.MemberID(),
		Name:        t.Name(),
		Phone:       t.Phone(),
		Description: t.Description(),
	}

	if won {
		result.DeliveredAt = now
		uc.logger.Infow("ticket checked in", "ticket_id", t.ID(), "number", t.Number())
		return result, nil
	}

	result.AlreadyCheckedIn = true
	if t.DeliveredAt() != nil {
		result.DeliveredAt = *t.DeliveredAt()
	} else {
		// Lost a concurrent race after the initial read. Re-read for the
		// actual delivery time.
		current, err := uc.ticketRepo.GetByID(ctx, t.ID())
		if err == nil && current.DeliveredAt() != nil {
			result.DeliveredAt = *current.DeliveredAt()
		}
	}

	uc.logger.Infow("ticket was already checked in",
		"ticket_id", t.ID(),
		"number", t.Number(),
		"delivered_at", result.DeliveredAt,
	)
	return result, nil
}
