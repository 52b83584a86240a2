package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type CreateRangeCommand struct {
	EventID uuid.UUID
	Start   int
	End     int
	Type    string
	Cost    *int
}

type CreateRangeResult struct {
	RangeID        uuid.UUID
	TicketsCreated int
}

// CreateRangeUseCase registers a new ticket-number range for an event and
// materializes its inventory in the same transaction. A range that intersects
// an existing active range of the event is rejected by name.
type CreateRangeUseCase struct {
	eventRepo event.Repository
	rangeRepo ticketrange.Repository
	generate  GenerateTicketsExecutor
	txManager *db.TransactionManager
	logger    logger.Interface
}

func NewCreateRangeUseCase(
	eventRepo event.Repository,
	rangeRepo ticketrange.Repository,
	generate GenerateTicketsExecutor,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *CreateRangeUseCase {
	return &CreateRangeUseCase{
		eventRepo: eventRepo,
		rangeRepo: rangeRepo,
		generate:  generate,
		txManager: txManager,
		logger:    logger,
	}
}

func (uc *CreateRangeUseCase) Execute(ctx context.Context, cmd CreateRangeCommand) (*CreateRangeResult, error) {
	uc.logger.Infow("creating ticket range",
		"event_id", cmd.EventID,
		"start", cmd.Start,
		"end", cmd.End,
		"type", cmd.Type,
	)

	if cmd.EventID == uuid.Nil {
		return nil, errors.NewValidationError("event ID is required")
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

	conflict, err := uc.rangeRepo.FindOverlapping(ctx, cmd.EventID, cmd.Start, cmd.End, nil)
	if err != nil {
		uc.logger.Errorw("failed to check range overlap", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to check range overlap: %w", err)
	}
	if conflict != nil {
		uc.logger.Warnw("range overlaps existing range",
			"event_id", cmd.EventID,
			"conflicting_range", conflict.Type(),
		)
		return nil, errors.NewValidationError(
			fmt.Sprintf("range %d-%d overlaps existing range %q (%d-%d)",
				cmd.Start, cmd.End, conflict.Type(), conflict.Start(), conflict.End()),
		)
	}

	rng, err := ticketrange.NewTicketRange(cmd.EventID, cmd.Start, cmd.End, cmd.Type, cmd.Cost)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var created int
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.rangeRepo.Save(txCtx, rng); err != nil {
			return fmt.Errorf("failed to save range: %w", err)
		}
		genResult, err := uc.generate.Execute(txCtx, GenerateTicketsCommand{
			Range:  rng,
			Origin: ticket.CreatedPreGenerated,
		})
		if err != nil {
			return err
		}
		created = genResult.Created
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to create ticket range", "error", err, "event_id", cmd.EventID)
		return nil, err
	}

	uc.logger.Infow("ticket range created",
		"range_id", rng.ID(),
		"event_id", cmd.EventID,
		"tickets_created", created,
	)

	return &CreateRangeResult{
		RangeID:        rng.ID(),
		TicketsCreated: created,
	}, nil
}
