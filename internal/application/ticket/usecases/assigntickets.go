package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"talao/internal/domain/allocation"
	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/ticket"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type AssignTicketsCommand struct {
	EventID      uuid.UUID
	TicketIDs    []uuid.UUID
	MemberID     uuid.UUID
	AllocationID *uuid.UUID
	PerformedBy  *uuid.UUID
}

type AssignTicketsResult struct {
	Assigned int
}

// AssignTicketsUseCase hands a picked set of tickets to one member. The batch
// is all or nothing: a single missing or already-assigned ticket rejects the
// whole request before anything is written.
type AssignTicketsUseCase struct {
	eventRepo      event.Repository
	memberRepo     member.Repository
	ticketRepo     ticket.Repository
	allocationRepo allocation.Repository
	flowRepo       ticket.FlowRepository
	txManager      *db.TransactionManager
	logger         logger.Interface
}

func NewAssignTicketsUseCase(
	eventRepo event.Repository,
	memberRepo member.Repository,
	ticketRepo ticket.Repository,
	allocationRepo allocation.Repository,
	flowRepo ticket.FlowRepository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *AssignTicketsUseCase {
	return &AssignTicketsUseCase{
		eventRepo:      eventRepo,
		memberRepo:     memberRepo,
		ticketRepo:     ticketRepo,
		allocationRepo: allocationRepo,
		flowRepo:       flowRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

func (uc *AssignTicketsUseCase) Execute(ctx context.Context, cmd AssignTicketsCommand) (*AssignTicketsResult, error) {
	uc.logger.Infow("assigning tickets",
		"event_id", cmd.EventID,
		"member_id", cmd.MemberID,
		"ticket_count", len(cmd.TicketIDs),
	)

	if len(cmd.TicketIDs) == 0 {
		return nil, errors.NewValidationError("at least one ticket ID is required")
	}
	if cmd.MemberID == uuid.Nil {
		return nil, errors.NewValidationError("member ID is required")
	}

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	tickets, err := uc.ticketRepo.GetByIDs(ctx, cmd.TicketIDs)
	if err != nil {
		uc.logger.Errorw("failed to load tickets", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	found := make(map[uuid.UUID]*ticket.Ticket, len(tickets))
	for _, t := range tickets {
		if t.EventID() == cmd.EventID {
			found[t.ID()] = t
		}
	}
	var missing []string
	for _, id := range cmd.TicketIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		uc.logger.Warnw("tickets not found", "event_id", cmd.EventID, "missing", len(missing))
		return nil, errors.NewNotFoundError("tickets not found: " + strings.Join(missing, ", "))
	}

	var taken []string
	for _, t := range tickets {
		if t.IsAssigned() {
			taken = append(taken, strconv.Itoa(t.Number()))
		}
	}
	if len(taken) > 0 {
		uc.logger.Warnw("tickets already assigned", "event_id", cmd.EventID, "numbers", taken)
		return nil, errors.NewValidationError("tickets already assigned: " + strings.Join(taken, ", "))
	}

	m, err := uc.memberRepo.GetByID(ctx, cmd.MemberID)
	if err != nil || m.EventID() != cmd.EventID {
		uc.logger.Warnw("member not found for event", "member_id", cmd.MemberID, "event_id", cmd.EventID)
		return nil, errors.NewValidationError("member does not belong to this event")
	}

	if cmd.AllocationID != nil {
		alloc, err := uc.allocationRepo.GetByID(ctx, *cmd.AllocationID)
		if err != nil || alloc.MemberID() != cmd.MemberID {
			uc.logger.Warnw("invalid allocation", "allocation_id", *cmd.AllocationID, "member_id", cmd.MemberID)
			return nil, errors.NewValidationError("allocation does not belong to this member")
		}
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.ticketRepo.AssignBatch(txCtx, cmd.TicketIDs, cmd.MemberID, cmd.AllocationID); err != nil {
			return err
		}
		memberID := cmd.MemberID
		flows := make([]*ticket.Flow, 0, len(cmd.TicketIDs))
		for _, tid := range cmd.TicketIDs {
			f, err := ticket.NewFlow(tid, cmd.EventID, ticket.FlowAssigned, nil, &memberID, cmd.PerformedBy)
			if err != nil {
				return fmt.Errorf("failed to build flow: %w", err)
			}
			flows = append(flows, f)
		}
		return uc.flowRepo.AppendBatch(txCtx, flows)
	})
	if err != nil {
		uc.logger.Errorw("failed to assign tickets", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to assign tickets: %w", err)
	}

	uc.logger.Infow("tickets assigned",
		"event_id", cmd.EventID,
		"member_id", cmd.MemberID,
		"assigned", len(cmd.TicketIDs),
	)

	return &AssignTicketsResult{Assigned: len(cmd.TicketIDs)}, nil
}
