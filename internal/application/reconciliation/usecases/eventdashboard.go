package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/payment"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type EventDashboardCommand struct {
	EventID uuid.UUID
}

// TypeMetric is one per-range-type slice of a dashboard count.
type TypeMetric struct {
	Type  string
	Count int
}

type EventDashboardResult struct {
	EventID      uuid.UUID
	TotalTickets int64
	// LinkedTickets counts tickets currently bound to a member.
	LinkedTickets int64
	// UnreturnedLinkedTickets excludes the returned ones from the linked count.
	UnreturnedLinkedTickets int64
	DeliveredTickets        int64
	AfterImportTickets      int64
	// ReturnedLinkedTickets counts linked tickets marked returned.
	ReturnedLinkedTickets int64
	// ReturnedAndDelivered counts the delivered-and-returned anomaly.
	ReturnedAndDelivered int64
	TotalMembers         int64

	TotalPaymentsValue    int
	PaymentsValueLastWeek int
	// TotalPayedTickets is the flat estimate of tickets covered by the money
	// collected, at the default per-ticket cost.
	TotalPayedTickets int

	TicketsPerType           []TypeMetric
	LinkedPerType            []TypeMetric
	DeliveredPerType         []TypeMetric
	ReturnedDeliveredPerType []TypeMetric
	// PayedPerType attributes collected money to tickets per type, walking
	// each member's tickets while their paid balance covers the cost.
	PayedPerType []TypeMetric
	// PredictedPerType is PayedPerType with the confirmed-but-unpaid override
	// applied: a confirmed member's tickets all count as covered.
	PredictedPerType []TypeMetric

	PaidOffMembers         int
	UnpaidMembers          int
	ConfirmedUnpaidMembers int
	PaidTickets            int
	UnpaidTickets          int
	ConfirmedUnpaidTickets int
}

// EventDashboardUseCase aggregates the reconciliation metrics of one event.
// Everything is computed from current rows on every call.
type EventDashboardUseCase struct {
	eventRepo   event.Repository
	memberRepo  member.Repository
	rangeRepo   ticketrange.Repository
	ticketRepo  ticket.Repository
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewEventDashboardUseCase(
	eventRepo event.Repository,
	memberRepo member.Repository,
	rangeRepo ticketrange.Repository,
	ticketRepo ticket.Repository,
	paymentRepo payment.Repository,
	logger logger.Interface,
) *EventDashboardUseCase {
	return &EventDashboardUseCase{
		eventRepo:   eventRepo,
		memberRepo:  memberRepo,
		rangeRepo:   rangeRepo,
		ticketRepo:  ticketRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (uc *EventDashboardUseCase) Execute(ctx context.Context, cmd EventDashboardCommand) (*EventDashboardResult, error) {
	uc.logger.Infow("computing event dashboard", "event_id", cmd.EventID)

	if _, err := uc.eventRepo.GetByID(ctx, cmd.EventID); err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}

	result := &EventDashboardResult{EventID: cmd.EventID}

	boolPtr := func(v bool) *bool { return &v }
	afterImport := ticket.CreatedAfterImport

	counts := []struct {
		dst    *int64
		filter ticket.CountFilter
	}{
		{&result.TotalTickets, ticket.CountFilter{}},
		{&result.LinkedTickets, ticket.CountFilter{LinkedOnly: true}},
		{&result.UnreturnedLinkedTickets, ticket.CountFilter{LinkedOnly: true, Returned: boolPtr(false)}},
		{&result.DeliveredTickets, ticket.CountFilter{LinkedOnly: true, Delivered: boolPtr(true)}},
		{&result.AfterImportTickets, ticket.CountFilter{LinkedOnly: true, Created: &afterImport}},
		{&result.ReturnedLinkedTickets, ticket.CountFilter{LinkedOnly: true, Returned: boolPtr(true)}},
		{&result.ReturnedAndDelivered, ticket.CountFilter{LinkedOnly: true, Returned: boolPtr(true), Delivered: boolPtr(true)}},
	}
	for _, c := range counts {
		n, err := uc.ticketRepo.CountByEvent(ctx, cmd.EventID, c.filter)
		if err != nil {
			uc.logger.Errorw("failed to count tickets", "error", err, "event_id", cmd.EventID)
			return nil, fmt.Errorf("failed to count tickets: %w", err)
		}
		*c.dst = n
	}

	memberCount, err := uc.memberRepo.CountByEvent(ctx, cmd.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	result.TotalMembers = memberCount

	totalValue, err := uc.paymentRepo.SumActiveByEvent(ctx, cmd.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	result.TotalPaymentsValue = totalValue
	result.TotalPayedTickets = totalValue / ticketrange.DefaultTicketCost

	now := time.Now()
	lastWeek, err := uc.paymentRepo.SumActiveByEventBetween(ctx, cmd.EventID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum recent payments: %w", err)
	}
	result.PaymentsValueLastWeek = lastWeek

	typeCounts := []struct {
		dst    *[]TypeMetric
		filter ticket.CountFilter
	}{
		{&result.TicketsPerType, ticket.CountFilter{}},
		{&result.LinkedPerType, ticket.CountFilter{LinkedOnly: true}},
		{&result.DeliveredPerType, ticket.CountFilter{LinkedOnly: true, Delivered: boolPtr(true), Returned: boolPtr(false)}},
		{&result.ReturnedDeliveredPerType, ticket.CountFilter{LinkedOnly: true, Returned: boolPtr(true), Delivered: boolPtr(true)}},
	}
	for _, c := range typeCounts {
		rows, err := uc.ticketRepo.CountPerType(ctx, cmd.EventID, c.filter)
		if err != nil {
			uc.logger.Errorw("failed to count tickets per type", "error", err, "event_id", cmd.EventID)
			return nil, fmt.Errorf("failed to count tickets per type: %w", err)
		}
		metrics := make([]TypeMetric, len(rows))
		for i, row := range rows {
			metrics[i] = TypeMetric{Type: row.Type, Count: int(row.Count)}
		}
		*c.dst = metrics
	}

	if err := uc.computePayoff(ctx, cmd.EventID, result); err != nil {
		return nil, err
	}

	uc.logger.Infow("event dashboard computed",
		"event_id", cmd.EventID,
		"total_tickets", result.TotalTickets,
		"linked_tickets", result.LinkedTickets,
		"total_payments_value", result.TotalPaymentsValue,
	)

	return result, nil
}

// computePayoff walks every member's unreturned tickets against their paid
// balance and fills the paid/unpaid metrics.
func (uc *EventDashboardUseCase) computePayoff(ctx context.Context, eventID uuid.UUID, result *EventDashboardResult) error {
	bindings, err := uc.ticketRepo.ListBindings(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list ticket bindings: %w", err)
	}

	ranges, err := uc.rangeRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list ranges: %w", err)
	}
	costByRange := make(map[uuid.UUID]int, len(ranges))
	typeByRange := make(map[uuid.UUID]string, len(ranges))
	for _, rng := range ranges {
		costByRange[rng.ID()] = rng.CostOrDefault()
		typeByRange[rng.ID()] = rng.Type()
	}

	members, err := uc.memberRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	confirmed := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		confirmed[m.ID()] = m.AllConfirmedButNotYetFullyPaid()
	}

	paidByMember, err := uc.paymentRepo.SumActivePerMember(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to sum payments per member: %w", err)
	}

	type heldTicket struct {
		cost      int
		rangeType string
	}
	heldByMember := make(map[uuid.UUID][]heldTicket)
	for _, b := range bindings {
		if b.MemberID == nil || b.Returned {
			continue
		}
		cost := ticketrange.DefaultTicketCost
		rangeType := unspecifiedType
		if b.RangeID != nil {
			if c, ok := costByRange[*b.RangeID]; ok {
				cost = c
				rangeType = typeByRange[*b.RangeID]
			}
		}
		heldByMember[*b.MemberID] = append(heldByMember[*b.MemberID], heldTicket{cost: cost, rangeType: rangeType})
	}

	payedPerType := make(map[string]int)
	predictedPerType := make(map[string]int)

	for memberID, held := range heldByMember {
		paid := paidByMember[memberID]
		expected := 0
		for _, t := range held {
			expected += t.cost
		}
		isPaidOff := paid >= expected
		isConfirmed := confirmed[memberID]

		switch {
		case isPaidOff:
			result.PaidOffMembers++
			result.PaidTickets += len(held)
		case isConfirmed:
			result.ConfirmedUnpaidMembers++
			result.ConfirmedUnpaidTickets += len(held)
		default:
			result.UnpaidMembers++
			result.UnpaidTickets += len(held)
		}

		remaining := paid
		for _, t := range held {
			covered := remaining >= t.cost
			if covered {
				payedPerType[t.rangeType]++
				remaining -= t.cost
			}
			if covered || isConfirmed {
				predictedPerType[t.rangeType]++
			}
		}
	}

	result.PayedPerType = toTypeMetrics(payedPerType)
	result.PredictedPerType = toTypeMetrics(predictedPerType)
	return nil
}

func toTypeMetrics(perType map[string]int) []TypeMetric {
	metrics := make([]TypeMetric, 0, len(perType))
	for rangeType, count := range perType {
		metrics = append(metrics, TypeMetric{Type: rangeType, Count: count})
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Type < metrics[j].Type })
	return metrics
}
