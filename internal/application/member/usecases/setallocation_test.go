package usecases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/member"
	"talao/internal/domain/ticketrange"
)

func newSetAllocationFixture(t *testing.T) (
	*testutil.MockEventRepository,
	*testutil.MockTicketRangeRepository,
	*testutil.MockMemberRepository,
	*testutil.MockAllocationRepository,
	*SetAllocationUseCase,
) {
	t.Helper()
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	memberRepo := testutil.NewMockMemberRepository()
	allocationRepo := testutil.NewMockAllocationRepository()

	uc := NewSetAllocationUseCase(eventRepo, rangeRepo, memberRepo, allocationRepo, testutil.NewNopLogger())
	return eventRepo, rangeRepo, memberRepo, allocationRepo, uc
}

func TestSetAllocation_UpsertReplacesQuantity(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, allocationRepo, uc := newSetAllocationFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)
	m, err := member.NewMember(ev.ID(), uuid.New(), "Maria", nil, nil, nil)
	require.NoError(t, err)
	memberRepo.AddMember(m)

	_, err = uc.Execute(context.Background(), SetAllocationCommand{
		EventID: ev.ID(), MemberID: m.ID(), RangeID: rng.ID(), Quantity: 5,
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), SetAllocationCommand{
		EventID: ev.ID(), MemberID: m.ID(), RangeID: rng.ID(), Quantity: 2,
	})
	require.NoError(t, err)

	allocations := allocationRepo.All()
	require.Len(t, allocations, 1)
	assert.Equal(t, 2, allocations[0].Quantity())
}

func TestSetAllocation_ZeroQuantityAllowed(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, allocationRepo, uc := newSetAllocationFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)
	m, err := member.NewMember(ev.ID(), uuid.New(), "Maria", nil, nil, nil)
	require.NoError(t, err)
	memberRepo.AddMember(m)

	result, err := uc.Execute(context.Background(), SetAllocationCommand{
		EventID: ev.ID(), MemberID: m.ID(), RangeID: rng.ID(), Quantity: 0,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Quantity)
	require.Len(t, allocationRepo.All(), 1)
}

func TestSetAllocation_NegativeQuantityRejected(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, _, uc := newSetAllocationFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)
	m, err := member.NewMember(ev.ID(), uuid.New(), "Maria", nil, nil, nil)
	require.NoError(t, err)
	memberRepo.AddMember(m)

	_, err = uc.Execute(context.Background(), SetAllocationCommand{
		EventID: ev.ID(), MemberID: m.ID(), RangeID: rng.ID(), Quantity: -1,
	})
	assert.Error(t, err)
}

func TestSetAllocation_RangeFromOtherEvent(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, _, uc := newSetAllocationFixture(t)

	ev := newTestEvent(t, nil)
	other := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	eventRepo.AddEvent(other)
	rng, err := ticketrange.NewTicketRange(other.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)
	m, err := member.NewMember(ev.ID(), uuid.New(), "Maria", nil, nil, nil)
	require.NoError(t, err)
	memberRepo.AddMember(m)

	_, err = uc.Execute(context.Background(), SetAllocationCommand{
		EventID: ev.ID(), MemberID: m.ID(), RangeID: rng.ID(), Quantity: 1,
	})
	assert.Error(t, err)
}
