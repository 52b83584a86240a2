package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/event"
	"talao/internal/domain/ticketrange"
)

func newTestEvent(t *testing.T, autoTickets *int) *event.Event {
	t.Helper()
	ev, err := event.ReconstructEvent(uuid.New(), "Festa Junina", false, autoTickets, time.Now())
	require.NoError(t, err)
	return ev
}

func newCreateMemberFixture(t *testing.T) (
	*testutil.MockEventRepository,
	*testutil.MockTicketRangeRepository,
	*testutil.MockMemberRepository,
	*testutil.MockAllocationRepository,
	*CreateMemberUseCase,
) {
	t.Helper()
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	memberRepo := testutil.NewMockMemberRepository()
	allocationRepo := testutil.NewMockAllocationRepository()
	txManager, err := testutil.NewTxManager()
	require.NoError(t, err)

	uc := NewCreateMemberUseCase(eventRepo, rangeRepo, memberRepo, allocationRepo, txManager, testutil.NewNopLogger())
	return eventRepo, rangeRepo, memberRepo, allocationRepo, uc
}

func intPtr(v int) *int { return &v }

func TestCreateMember_SavesAllocations(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, allocationRepo, uc := newCreateMemberFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)

	result, err := uc.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "  Jose DA Silva ",
		Allocations: []AllocationInput{
			{RangeID: rng.ID(), Quantity: 5},
		},
	})
	require.NoError(t, err)

	saved, err := memberRepo.GetByID(context.Background(), result.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "jose da silva", saved.CleanName())

	allocations := allocationRepo.All()
	require.Len(t, allocations, 1)
	assert.Equal(t, result.MemberID, allocations[0].MemberID())
	assert.Equal(t, rng.ID(), allocations[0].RangeID())
	assert.Equal(t, 5, allocations[0].Quantity())
}

func TestCreateMember_MissingAllocationRejected(t *testing.T) {
	eventRepo, rangeRepo, _, _, uc := newCreateMemberFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	standard, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(standard)
	vip, err := ticketrange.NewTicketRange(ev.ID(), 101, 150, "VIP", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(vip)

	_, err = uc.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "Maria",
		Allocations: []AllocationInput{
			{RangeID: standard.ID(), Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), vip.ID().String())
	assert.Contains(t, err.Error(), "VIP")
	assert.NotContains(t, err.Error(), standard.ID().String())
}

func TestCreateMember_AutoQuantitySkipsAllocationRule(t *testing.T) {
	eventRepo, rangeRepo, memberRepo, allocationRepo, uc := newCreateMemberFixture(t)

	ev := newTestEvent(t, intPtr(4))
	eventRepo.AddEvent(ev)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)

	result, err := uc.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "Maria",
	})
	require.NoError(t, err)

	_, err = memberRepo.GetByID(context.Background(), result.MemberID)
	assert.NoError(t, err)
	assert.Empty(t, allocationRepo.All())
}

func TestCreateMember_UnknownRangeRejected(t *testing.T) {
	eventRepo, _, _, _, uc := newCreateMemberFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)

	_, err := uc.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "Maria",
		Allocations: []AllocationInput{
			{RangeID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown range")
}

func TestCreateMember_NegativeQuantityRejected(t *testing.T) {
	eventRepo, rangeRepo, _, _, uc := newCreateMemberFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)

	_, err = uc.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "Maria",
		Allocations: []AllocationInput{
			{RangeID: rng.ID(), Quantity: -1},
		},
	})
	assert.Error(t, err)
}

func TestToggleConfirmed_Flips(t *testing.T) {
	eventRepo, _, memberRepo, _, createUC := newCreateMemberFixture(t)

	ev := newTestEvent(t, intPtr(2))
	eventRepo.AddEvent(ev)

	created, err := createUC.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "Maria",
	})
	require.NoError(t, err)

	uc := NewToggleConfirmedUseCase(eventRepo, memberRepo, testutil.NewNopLogger())

	result, err := uc.Execute(context.Background(), ToggleConfirmedCommand{EventID: ev.ID(), MemberID: created.MemberID})
	require.NoError(t, err)
	assert.True(t, result.Confirmed)

	result, err = uc.Execute(context.Background(), ToggleConfirmedCommand{EventID: ev.ID(), MemberID: created.MemberID})
	require.NoError(t, err)
	assert.False(t, result.Confirmed)
}

func TestToggleConfirmed_MemberFromOtherEvent(t *testing.T) {
	eventRepo, _, memberRepo, _, createUC := newCreateMemberFixture(t)

	ev := newTestEvent(t, intPtr(2))
	other := newTestEvent(t, intPtr(2))
	eventRepo.AddEvent(ev)
	eventRepo.AddEvent(other)

	created, err := createUC.Execute(context.Background(), CreateMemberCommand{
		EventID:   ev.ID(),
		SessionID: uuid.New(),
		Name:      "Maria",
	})
	require.NoError(t, err)

	uc := NewToggleConfirmedUseCase(eventRepo, memberRepo, testutil.NewNopLogger())

	_, err = uc.Execute(context.Background(), ToggleConfirmedCommand{EventID: other.ID(), MemberID: created.MemberID})
	assert.Error(t, err)
}
