package usecases

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/allocation"
	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
)

func newTestEvent(t *testing.T, autoTickets *int) *event.Event {
	t.Helper()
	ev, err := event.ReconstructEvent(uuid.New(), "Festa Junina", false, autoTickets, time.Now())
	require.NoError(t, err)
	return ev
}

func newReadOnlyEvent(t *testing.T) *event.Event {
	t.Helper()
	ev, err := event.ReconstructEvent(uuid.New(), "Festa Encerrada", true, nil, time.Now())
	require.NoError(t, err)
	return ev
}

func newTestRange(t *testing.T, eventID uuid.UUID, start, end int, rangeType string) *ticketrange.TicketRange {
	t.Helper()
	rng, err := ticketrange.NewTicketRange(eventID, start, end, rangeType, nil)
	require.NoError(t, err)
	return rng
}

func newTestMember(t *testing.T, eventID uuid.UUID, name string, order *int) *member.Member {
	t.Helper()
	m, err := member.NewMember(eventID, uuid.New(), name, order, nil, nil)
	require.NoError(t, err)
	return m
}

func addTickets(t *testing.T, repo *testutil.MockTicketRepository, eventID, rangeID uuid.UUID, from, to int) []*ticket.Ticket {
	t.Helper()
	var tickets []*ticket.Ticket
	for n := from; n <= to; n++ {
		tk, err := ticket.NewTicket(eventID, n, rangeID, ticket.CreatedPreGenerated)
		require.NoError(t, err)
		repo.AddTicket(tk)
		tickets = append(tickets, tk)
	}
	return tickets
}

func intPtr(v int) *int { return &v }

func newAssignmentFixture(t *testing.T) (
	*testutil.MockEventRepository,
	*testutil.MockTicketRangeRepository,
	*testutil.MockMemberRepository,
	*testutil.MockTicketRepository,
	*testutil.MockAllocationRepository,
	*testutil.MockTicketFlowRepository,
	*RunAssignmentUseCase,
) {
	t.Helper()
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	memberRepo := testutil.NewMockMemberRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	allocationRepo := testutil.NewMockAllocationRepository()
	flowRepo := testutil.NewMockTicketFlowRepository()
	txManager, err := testutil.NewTxManager()
	require.NoError(t, err)

	uc := NewRunAssignmentUseCase(
		eventRepo, rangeRepo, memberRepo, ticketRepo, allocationRepo, flowRepo,
		txManager, testutil.NewNopLogger(),
	)
	return eventRepo, rangeRepo, memberRepo, ticketRepo, allocationRepo, flowRepo, uc
}

func memberNumbers(repo *testutil.MockTicketRepository, memberID uuid.UUID) []int {
	var numbers []int
	for _, tk := range repo.All() {
		if tk.MemberID() != nil && *tk.MemberID() == memberID {
			numbers = append(numbers, tk.Number())
		}
	}
	sort.Ints(numbers)
	return numbers
}

func TestRunAssignment_PriorityOrderLowestNumbersFirst(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, ticketRepo, allocationRepo, flowRepo, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 10, "STANDARD")
	rangeRepo.AddRange(rng)
	first := newTestMember(t, ev.ID(), "First", intPtr(1))
	second := newTestMember(t, ev.ID(), "Second", intPtr(2))
	memberRepo.AddMember(first)
	memberRepo.AddMember(second)
	addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 10)

	allocationRepo.Deficits = []allocation.Deficit{
		{AllocationID: uuid.New(), MemberID: first.ID(), RangeID: rng.ID(), Quantity: 3, MemberOrder: intPtr(1)},
		{AllocationID: uuid.New(), MemberID: second.ID(), RangeID: rng.ID(), Quantity: 2, MemberOrder: intPtr(2)},
	}

	result, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Assigned)
	assert.False(t, result.NothingToDo)
	assert.Equal(t, []int{1, 2, 3}, memberNumbers(ticketRepo, first.ID()))
	assert.Equal(t, []int{4, 5}, memberNumbers(ticketRepo, second.ID()))

	flows := flowRepo.Flows()
	assert.Len(t, flows, 5)
	for _, f := range flows {
		assert.Equal(t, ticket.FlowAssigned, f.Type())
		assert.Nil(t, f.FromMemberID())
		assert.NotNil(t, f.ToMemberID())
	}
}

func TestRunAssignment_PoolExhaustion(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, ticketRepo, allocationRepo, _, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 3, "STANDARD")
	rangeRepo.AddRange(rng)
	first := newTestMember(t, ev.ID(), "First", intPtr(1))
	second := newTestMember(t, ev.ID(), "Second", intPtr(2))
	memberRepo.AddMember(first)
	memberRepo.AddMember(second)
	addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 3)

	allocationRepo.Deficits = []allocation.Deficit{
		{AllocationID: uuid.New(), MemberID: first.ID(), RangeID: rng.ID(), Quantity: 2, MemberOrder: intPtr(1)},
		{AllocationID: uuid.New(), MemberID: second.ID(), RangeID: rng.ID(), Quantity: 2, MemberOrder: intPtr(2)},
	}

	result, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	require.NoError(t, err)

	// The pool runs dry: the higher-priority member is served fully, the
	// second gets what remains and no error is raised.
	assert.Equal(t, 3, result.Assigned)
	assert.Equal(t, []int{1, 2}, memberNumbers(ticketRepo, first.ID()))
	assert.Equal(t, []int{3}, memberNumbers(ticketRepo, second.ID()))
}

func TestRunAssignment_NoUnassignedTickets(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, ticketRepo, allocationRepo, flowRepo, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 2, "STANDARD")
	rangeRepo.AddRange(rng)
	m := newTestMember(t, ev.ID(), "Only", intPtr(1))
	memberRepo.AddMember(m)
	tickets := addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 2)
	for _, tk := range tickets {
		require.NoError(t, tk.AssignTo(m.ID(), nil))
	}

	allocationRepo.Deficits = []allocation.Deficit{
		{AllocationID: uuid.New(), MemberID: m.ID(), RangeID: rng.ID(), Quantity: 5, LinkedCount: 2},
	}

	result, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	require.NoError(t, err)

	assert.True(t, result.NothingToDo)
	assert.Zero(t, result.Assigned)
	assert.Empty(t, flowRepo.Flows())
}

func TestRunAssignment_ImplicitAllocations(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, ticketRepo, _, flowRepo, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, intPtr(2))
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 10, "STANDARD")
	rangeRepo.AddRange(rng)
	first := newTestMember(t, ev.ID(), "First", intPtr(1))
	second := newTestMember(t, ev.ID(), "Second", intPtr(2))
	memberRepo.AddMember(first)
	memberRepo.AddMember(second)
	addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 10)

	result, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Assigned)
	assert.Equal(t, []int{1, 2}, memberNumbers(ticketRepo, first.ID()))
	assert.Equal(t, []int{3, 4}, memberNumbers(ticketRepo, second.ID()))

	// Implicit deficits consume no allocation rows.
	for _, tk := range ticketRepo.All() {
		assert.Nil(t, tk.AllocationID())
	}
	assert.Len(t, flowRepo.Flows(), 4)
}

func TestRunAssignment_ImplicitAllocations_AlreadyHolding(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, ticketRepo, _, _, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, intPtr(2))
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 10, "STANDARD")
	rangeRepo.AddRange(rng)
	m := newTestMember(t, ev.ID(), "Holder", intPtr(1))
	memberRepo.AddMember(m)
	tickets := addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 10)
	require.NoError(t, tickets[0].AssignTo(m.ID(), nil))

	result, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, []int{1, 2}, memberNumbers(ticketRepo, m.ID()))
}

func TestRunAssignment_EventNotFound(t *testing.T) {
	_, _, _, _, _, _, uc := newAssignmentFixture(t)

	_, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: uuid.New()})
	assert.Error(t, err)
}

func TestRunAssignment_ReadOnlyEvent(t *testing.T) {
	eventRepo, _, _, _, _, _, uc := newAssignmentFixture(t)

	ev := newReadOnlyEvent(t)
	eventRepo.AddEvent(ev)

	_, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	assert.Error(t, err)
}

func TestRunAssignment_NoRanges(t *testing.T) {
	eventRepo, _, memberRepo, _, _, _, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	memberRepo.AddMember(newTestMember(t, ev.ID(), "Only", nil))

	_, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	assert.Error(t, err)
}

func TestRunAssignment_NoMembers(t *testing.T) {
	eventRepo, rangeRepo, _, _, _, _, uc := newAssignmentFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rangeRepo.AddRange(newTestRange(t, ev.ID(), 1, 10, "STANDARD"))

	_, err := uc.Execute(context.Background(), RunAssignmentCommand{EventID: ev.ID()})
	assert.Error(t, err)
}
