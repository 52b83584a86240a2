package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/payment"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

// unspecifiedType buckets tickets that carry no range binding.
const unspecifiedType = "UNSPECIFIED"

type MemberBalanceCommand struct {
	EventID  uuid.UUID
	MemberID uuid.UUID
}

type MemberBalanceResult struct {
	MemberID     uuid.UUID
	MemberName   string
	TotalTickets int
	// TicketsPerType counts the member's unreturned tickets per range type.
	TicketsPerType map[string]int
	// CostExpected is what the member owes: the sum of the per-range cost of
	// every unreturned ticket they hold.
	CostExpected int
	Paid         int
	IsPaidOff    bool
	// ConfirmedOverride reports the manual confirmed-but-unpaid flag. It is
	// informational and never changes IsPaidOff.
	ConfirmedOverride bool
}

// MemberBalanceUseCase computes what one member owes against what they paid.
// Returned tickets are excluded from the debt; deleted payments never count.
type MemberBalanceUseCase struct {
	eventRepo   event.Repository
	memberRepo  member.Repository
	rangeRepo   ticketrange.Repository
	ticketRepo  ticket.Repository
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewMemberBalanceUseCase(
	eventRepo event.Repository,
	memberRepo member.Repository,
	rangeRepo ticketrange.Repository,
	ticketRepo ticket.Repository,
	paymentRepo payment.Repository,
	logger logger.Interface,
) *MemberBalanceUseCase {
	return &MemberBalanceUseCase{
		eventRepo:   eventRepo,
		memberRepo:  memberRepo,
		rangeRepo:   rangeRepo,
		ticketRepo:  ticketRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (uc *MemberBalanceUseCase) Execute(ctx context.Context, cmd MemberBalanceCommand) (*MemberBalanceResult, error) {
	uc.logger.Infow("computing member balance", "event_id", cmd.EventID, "member_id", cmd.MemberID)

	if _, err := uc.eventRepo.GetByID(ctx, cmd.EventID); err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}

	m, err := uc.memberRepo.GetByID(ctx, cmd.MemberID)
	if err != nil || m.EventID() != cmd.EventID {
		uc.logger.Warnw("member not found", "member_id", cmd.MemberID, "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("member not found")
	}

	bindings, err := uc.ticketRepo.ListUnreturnedByMember(ctx, m.ID())
	if err != nil {
		uc.logger.Errorw("failed to list member tickets", "error", err, "member_id", m.ID())
		return nil, fmt.Errorf("failed to list member tickets: %w", err)
	}

	// Ranges are loaded with tombstones included: a ticket issued from a
	// since-deleted range still owes that range's cost.
	ranges, err := uc.rangeRepo.ListByEvent(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Errorw("failed to list ranges", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to list ranges: %w", err)
	}
	costByRange := make(map[uuid.UUID]int, len(ranges))
	typeByRange := make(map[uuid.UUID]string, len(ranges))
	for _, rng := range ranges {
		costByRange[rng.ID()] = rng.CostOrDefault()
		typeByRange[rng.ID()] = rng.Type()
	}

	perType := make(map[string]int)
	costExpected := 0
	for _, b := range bindings {
		cost := ticketrange.DefaultTicketCost
		rangeType := unspecifiedType
		if b.RangeID != nil {
			if c, ok := costByRange[*b.RangeID]; ok {
				cost = c
				rangeType = typeByRange[*b.RangeID]
			}
		}
		perType[rangeType]++
		costExpected += cost
	}

	paid, err := uc.paymentRepo.SumActiveByMember(ctx, m.ID())
	if err != nil {
		uc.logger.Errorw("failed to sum payments", "error", err, "member_id", m.ID())
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	result := &MemberBalanceResult{
		MemberID:          m.ID(),
		MemberName:        m.Name(),
		TotalTickets:      len(bindings),
		TicketsPerType:    perType,
		CostExpected:      costExpected,
		Paid:              paid,
		IsPaidOff:         paid >= costExpected,
		ConfirmedOverride: m.AllConfirmedButNotYetFullyPaid(),
	}

	uc.logger.Infow("member balance computed",
		"member_id", m.ID(),
		"cost_expected", costExpected,
		"paid", paid,
		"is_paid_off", result.IsPaidOff,
	)

	return result, nil
}
