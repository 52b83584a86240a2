package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"talao/internal/domain/allocation"
	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
	"talao/internal/shared/db"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type RunAssignmentCommand struct {
	EventID uuid.UUID
	// PerformedBy is stamped on the audit flows when set.
	PerformedBy *uuid.UUID
}

type RunAssignmentResult struct {
	Assigned int
	// NothingToDo is set when no unassigned tickets remain. That is a
	// successful outcome, not an error.
	NothingToDo bool
}

// batchPlan is one AssignBatch call the engine prepared: a set of ticket IDs
// going to one member, optionally consuming one allocation.
type batchPlan struct {
	ticketIDs    []uuid.UUID
	ticketNums   []int
	memberID     uuid.UUID
	allocationID *uuid.UUID
}

// RunAssignmentUseCase is the deficit-driven bulk assignment engine. It walks
// the event's outstanding allocations in member priority order and satisfies
// each from the pool of unassigned tickets of the matching range, lowest
// numbers first. Exhausted pools are not an error: the engine assigns what it
// can and stops.
//
// When the event carries an implicit per-member quantity instead of explicit
// allocations, deficits are derived per (member, range) pair from that
// quantity minus the tickets the member already holds.
type RunAssignmentUseCase struct {
	eventRepo      event.Repository
	rangeRepo      ticketrange.Repository
	memberRepo     member.Repository
	ticketRepo     ticket.Repository
	allocationRepo allocation.Repository
	flowRepo       ticket.FlowRepository
	txManager      *db.TransactionManager
	logger         logger.Interface
}

func NewRunAssignmentUseCase(
	eventRepo event.Repository,
	rangeRepo ticketrange.Repository,
	memberRepo member.Repository,
	ticketRepo ticket.Repository,
	allocationRepo allocation.Repository,
	flowRepo ticket.FlowRepository,
	txManager *db.TransactionManager,
	logger logger.Interface,
) *RunAssignmentUseCase {
	return &RunAssignmentUseCase{
		eventRepo:      eventRepo,
		rangeRepo:      rangeRepo,
		memberRepo:     memberRepo,
		ticketRepo:     ticketRepo,
		allocationRepo: allocationRepo,
		flowRepo:       flowRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

func (uc *RunAssignmentUseCase) Execute(ctx context.Context, cmd RunAssignmentCommand) (*RunAssignmentResult, error) {
	uc.logger.Infow("running ticket assignment", "event_id", cmd.EventID)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	ranges, err := uc.rangeRepo.ListActiveByEvent(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Errorw("failed to list ranges", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to list ranges: %w", err)
	}
	if len(ranges) == 0 {
		return nil, errors.NewValidationError("event has no ticket ranges")
	}

	memberCount, err := uc.memberRepo.CountByEvent(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Errorw("failed to count members", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if memberCount == 0 {
		return nil, errors.NewValidationError("event has no members")
	}

	var deficits []allocation.Deficit
	if ev.AutoTicketsPerMember() != nil {
		deficits, err = uc.implicitDeficits(ctx, ev, ranges)
	} else {
		deficits, err = uc.allocationRepo.ListDeficitsByEvent(ctx, cmd.EventID)
	}
	if err != nil {
		uc.logger.Errorw("failed to compute deficits", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to compute deficits: %w", err)
	}

	unassigned, err := uc.ticketRepo.ListUnassignedByEvent(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Errorw("failed to list unassigned tickets", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("failed to list unassigned tickets: %w", err)
	}
	if len(unassigned) == 0 {
		uc.logger.Infow("no unassigned tickets left", "event_id", cmd.EventID)
		return &RunAssignmentResult{NothingToDo: true}, nil
	}

	// Pools keep the repository's number-ascending order. Tickets without a
	// range binding cannot satisfy any allocation and stay untouched.
	pools := make(map[uuid.UUID][]*ticket.Ticket)
	for _, t := range unassigned {
		if t.RangeID() == nil {
			continue
		}
		pools[*t.RangeID()] = append(pools[*t.RangeID()], t)
	}

	plans := uc.plan(deficits, pools)
	if len(plans) == 0 {
		uc.logger.Infow("no outstanding allocations to satisfy", "event_id", cmd.EventID)
		return &RunAssignmentResult{NothingToDo: true}, nil
	}

	var assigned int
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		flows := make([]*ticket.Flow, 0, len(plans))
		for _, p := range plans {
			uc.logger.Debugw("assigning batch", "member_id", p.memberID, "numbers", p.ticketNums)
			if err := uc.ticketRepo.AssignBatch(txCtx, p.ticketIDs, p.memberID, p.allocationID); err != nil {
				return err
			}
			memberID := p.memberID
			for _, tid := range p.ticketIDs {
				f, err := ticket.NewFlow(tid, cmd.EventID, ticket.FlowAssigned, nil, &memberID, cmd.PerformedBy)
				if err != nil {
					return fmt.Errorf("failed to build flow: %w", err)
				}
				flows = append(flows, f)
			}
			assigned += len(p.ticketIDs)
		}
		return uc.flowRepo.AppendBatch(txCtx, flows)
	})
	if err != nil {
		uc.logger.Errorw("assignment transaction failed", "error", err, "event_id", cmd.EventID)
		return nil, fmt.Errorf("assignment failed: %w", err)
	}

	uc.logger.Infow("ticket assignment finished",
		"event_id", cmd.EventID,
		"assigned", assigned,
		"batches", len(plans),
	)

	return &RunAssignmentResult{Assigned: assigned}, nil
}

// plan consumes the per-range pools in deficit order and produces the batch
// updates to execute. Pools shrink as deficits claim tickets, so two
// allocations on the same range never receive the same number.
func (uc *RunAssignmentUseCase) plan(deficits []allocation.Deficit, pools map[uuid.UUID][]*ticket.Ticket) []batchPlan {
	plans := make([]batchPlan, 0, len(deficits))
	for _, d := range deficits {
		outstanding := d.Outstanding()
		if outstanding <= 0 {
			continue
		}
		pool := pools[d.RangeID]
		if len(pool) == 0 {
			continue
		}
		take := outstanding
		if take > len(pool) {
			take = len(pool)
		}

		p := batchPlan{
			ticketIDs:  make([]uuid.UUID, 0, take),
			ticketNums: make([]int, 0, take),
			memberID:   d.MemberID,
		}
		if d.AllocationID != uuid.Nil {
			allocID := d.AllocationID
			p.allocationID = &allocID
		}
		for _, t := range pool[:take] {
			p.ticketIDs = append(p.ticketIDs, t.ID())
			p.ticketNums = append(p.ticketNums, t.Number())
		}
		pools[d.RangeID] = pool[take:]
		plans = append(plans, p)
	}
	return plans
}

// implicitDeficits derives one deficit per (member, range) pair from the
// event's automatic per-member quantity. Members keep their priority order;
// ranges are walked start-ascending. The synthetic deficits carry a nil
// allocation ID.
func (uc *RunAssignmentUseCase) implicitDeficits(
	ctx context.Context,
	ev *event.Event,
	ranges []*ticketrange.TicketRange,
) ([]allocation.Deficit, error) {
	quantity := *ev.AutoTicketsPerMember()

	members, err := uc.memberRepo.ListByEvent(ctx, ev.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	counts, err := uc.ticketRepo.CountPerMemberRange(ctx, ev.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to count member tickets: %w", err)
	}
	held := make(map[uuid.UUID]map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		if held[c.MemberID] == nil {
			held[c.MemberID] = make(map[uuid.UUID]int)
		}
		held[c.MemberID][c.RangeID] = c.Count
	}

	sorted := make([]*ticketrange.TicketRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start() < sorted[j].Start() })

	deficits := make([]allocation.Deficit, 0, len(members)*len(sorted))
	for _, m := range members {
		for _, rng := range sorted {
			linked := held[m.ID()][rng.ID()]
			if linked >= quantity {
				continue
			}
			deficits = append(deficits, allocation.Deficit{
				MemberID:    m.ID(),
				RangeID:     rng.ID(),
				Quantity:    quantity,
				LinkedCount: linked,
				MemberOrder: m.Order(),
			})
		}
	}
	return deficits, nil
}
