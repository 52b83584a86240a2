package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type ExpandRangeCommand struct {
	EventID uuid.UUID
	RangeID uuid.UUID
	// NewStart and NewEnd replace the current bounds when set. A nil bound
	// keeps the current value.
	NewStart *int
	NewEnd   *int
}

type ExpandRangeResult struct {
	RangeID        uuid.UUID
	PreviousStart  int
	PreviousEnd    int
	Start          int
	End            int
	TicketsCreated int
	// NoChange is set when the requested bounds equal the current ones. The
	// call succeeds without touching anything.
	NoChange bool
}

// ExpandRangeUseCase grows a range to new bounds and creates the delta
// tickets. Shrinking is rejected, as are bounds that would collide with
// another range or with ticket numbers that already exist outside this range.
type ExpandRangeUseCase struct {
	eventRepo  event.Repository
	rangeRepo  ticketrange.Repository
	ticketRepo ticket.Repository
	txManager  *db.TransactionManager
	logger     logger.Interface
}

func NewExpandRangeUseCase(
	eventRepo event.Repository,
	rangeRepo ticketrange.Repository,
	ticketRepo ticket.Repository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *ExpandRangeUseCase {
	return &ExpandRangeUseCase{
		eventRepo:  eventRepo,
		rangeRepo:  rangeRepo,
		ticketRepo: ticketRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

func (uc *ExpandRangeUseCase) Execute(ctx context.Context, cmd ExpandRangeCommand) (*ExpandRangeResult, error) {
	uc.logger.Infow("expanding ticket range",
		"event_id", cmd.EventID,
		"range_id", cmd.RangeID,
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

	rng, err := uc.rangeRepo.GetByID(ctx, cmd.RangeID)
	if err != nil || rng.EventID() != cmd.EventID || rng.IsDeleted() {
		uc.logger.Warnw("ticket range not found", "range_id", cmd.RangeID, "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("ticket range not found")
	}

	prevStart := rng.Start()
	prevEnd := rng.End()

	newStart := prevStart
	if cmd.NewStart != nil {
		newStart = *cmd.NewStart
	}
	newEnd := prevEnd
	if cmd.NewEnd != nil {
		newEnd = *cmd.NewEnd
	}
	if newStart < 0 {
		return nil, errors.NewValidationError("range start cannot be negative")
	}

	added, err := rng.ExpandTo(newStart, newEnd)
	if err != nil {
		uc.logger.Warnw("range expansion rejected", "error", err, "range_id", cmd.RangeID)
		return nil, errors.NewValidationError(err.Error())
	}

	if newStart == prevStart && newEnd == prevEnd {
		uc.logger.Infow("range bounds unchanged", "range_id", cmd.RangeID)
		return &ExpandRangeResult{
			RangeID:       rng.ID(),
			PreviousStart: prevStart,
			PreviousEnd:   prevEnd,
			Start:         prevStart,
			End:           prevEnd,
			NoChange:      true,
		}, nil
	}

	excludeID := rng.ID()
	conflict, err := uc.rangeRepo.FindOverlapping(ctx, cmd.EventID, newStart, newEnd, &excludeID)
	if err != nil {
		uc.logger.Errorw("failed to check range overlap", "error", err, "range_id", cmd.RangeID)
		return nil, fmt.Errorf("failed to check range overlap: %w", err)
	}
	if conflict != nil {
		return nil, errors.NewValidationError(
			fmt.Sprintf("new bounds %d-%d overlap existing range %q (%d-%d)",
				newStart, newEnd, conflict.Type(), conflict.Start(), conflict.End()),
		)
	}

	existing, err := uc.ticketRepo.ExistingNumbers(ctx, cmd.EventID, added)
	if err != nil {
		uc.logger.Errorw("failed to check existing ticket numbers", "error", err, "range_id", cmd.RangeID)
		return nil, fmt.Errorf("failed to check existing ticket numbers: %w", err)
	}
	if len(existing) > 0 {
		return nil, errors.NewValidationError(
			"tickets already exist for numbers: "+joinNumbers(existing),
		)
	}

	rangeID := rng.ID()
	tickets := make([]*ticket.Ticket, 0, len(added))
	for _, n := range added {
		t, err := ticket.NewTicket(cmd.EventID, n, rangeID, ticket.CreatedPreGenerated)
		if err != nil {
			return nil, fmt.Errorf("failed to build ticket %d: %w", n, err)
		}
		tickets = append(tickets, t)
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.rangeRepo.UpdateBounds(txCtx, rng.ID(), newStart, newEnd); err != nil {
			return err
		}
		if len(tickets) > 0 {
			if err := uc.ticketRepo.CreateBatch(txCtx, tickets); err != nil {
				return fmt.Errorf("failed to create tickets: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to expand range", "error", err, "range_id", cmd.RangeID)
		return nil, err
	}

	uc.logger.Infow("ticket range expanded",
		"range_id", rng.ID(),
		"start", newStart,
		"end", newEnd,
		"tickets_created", len(tickets),
	)

	return &ExpandRangeResult{
		RangeID:        rng.ID(),
		PreviousStart:  prevStart,
		PreviousEnd:    prevEnd,
		Start:          newStart,
		End:            newEnd,
		TicketsCreated: len(tickets),
	}, nil
}

func joinNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
