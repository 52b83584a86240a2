package usecases

import (
	"context"
	"fmt"
	"time"

	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/logger"
)

// GenerateTicketsCommand materializes the ticket inventory of a range.
type GenerateTicketsCommand struct {
	Range  *ticketrange.TicketRange
	Origin ticket.Created
}

// GenerateTicketsResult reports how many tickets were created and how many
// numbers already existed and were skipped.
type GenerateTicketsResult struct {
	Created int
	Skipped int
}

// GenerateTicketsExecutor lets other use cases trigger inventory generation
// without depending on the concrete type.
type GenerateTicketsExecutor interface {
	Execute(ctx context.Context, cmd GenerateTicketsCommand) (*GenerateTicketsResult, error)
}

// GenerateTicketsUseCase creates one unassigned ticket per number covered by a
// range. Numbers that already have a ticket are skipped, so re-running
// generation is safe.
type GenerateTicketsUseCase struct {
	ticketRepo ticket.Repository
	rangeRepo  ticketrange.Repository
	logger     logger.Interface
}

func NewGenerateTicketsUseCase(
	ticketRepo ticket.Repository,
	rangeRepo ticketrange.Repository,
	logger logger.Interface,
) *GenerateTicketsUseCase {
	return &GenerateTicketsUseCase{
		ticketRepo: ticketRepo,
		rangeRepo:  rangeRepo,
		logger:     logger,
	}
}

func (uc *GenerateTicketsUseCase) Execute(ctx context.Context, cmd GenerateTicketsCommand) (*GenerateTicketsResult, error) {
	rng := cmd.Range
	if rng == nil {
		return nil, fmt.Errorf("range is required")
	}

	uc.logger.Infow("generating ticket inventory",
		"range_id", rng.ID(),
		"event_id", rng.EventID(),
		"start", rng.Start(),
		"end", rng.End(),
	)

	numbers := rng.Numbers()
	existing, err := uc.ticketRepo.ExistingNumbers(ctx, rng.EventID(), numbers)
	if err != nil {
		uc.logger.Errorw("failed to check existing ticket numbers", "error", err, "range_id", rng.ID())
		return nil, fmt.Errorf("failed to check existing ticket numbers: %w", err)
	}

	existingSet := make(map[int]struct{}, len(existing))
	for _, n := range existing {
		existingSet[n] = struct{}{}
	}

	rangeID := rng.ID()
	tickets := make([]*ticket.Ticket, 0, len(numbers)-len(existing))
	for _, n := range numbers {
		if _, ok := existingSet[n]; ok {
			continue
		}
		t, err := ticket.NewTicket(rng.EventID(), n, rangeID, cmd.Origin)
		if err != nil {
			return nil, fmt.Errorf("failed to build ticket %d: %w", n, err)
		}
		tickets = append(tickets, t)
	}

	if len(tickets) > 0 {
		if err := uc.ticketRepo.CreateBatch(ctx, tickets); err != nil {
			uc.logger.Errorw("failed to create tickets", "error", err, "range_id", rng.ID())
			return nil, fmt.Errorf("failed to create tickets: %w", err)
		}
	}

	now := time.Now()
	rng.MarkGenerated(now)
	if err := uc.rangeRepo.SetGeneratedAt(ctx, rng.ID(), now); err != nil {
		uc.logger.Errorw("failed to stamp range generation", "error", err, "range_id", rng.ID())
		return nil, fmt.Errorf("failed to stamp range generation: %w", err)
	}

	uc.logger.Infow("ticket inventory generated",
		"range_id", rng.ID(),
		"created", len(tickets),
		"skipped", len(existing),
	)

	return &GenerateTicketsResult{
		Created: len(tickets),
		Skipped: len(existing),
	}, nil
}

var _ GenerateTicketsExecutor = (*GenerateTicketsUseCase)(nil)
