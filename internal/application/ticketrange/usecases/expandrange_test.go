package usecases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
)

func newExpandRangeFixture(t *testing.T) (
	*testutil.MockEventRepository,
	*testutil.MockTicketRangeRepository,
	*testutil.MockTicketRepository,
	*ExpandRangeUseCase,
) {
	t.Helper()
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	txManager, err := testutil.NewTxManager()
	require.NoError(t, err)

	uc := NewExpandRangeUseCase(eventRepo, rangeRepo, ticketRepo, txManager, testutil.NewNopLogger())
	return eventRepo, rangeRepo, ticketRepo, uc
}

func seedRangeWithTickets(t *testing.T, rangeRepo *testutil.MockTicketRangeRepository, ticketRepo *testutil.MockTicketRepository, eventID uuid.UUID, start, end int) *ticketrange.TicketRange {
	t.Helper()
	rng, err := ticketrange.NewTicketRange(eventID, start, end, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)
	for n := start; n <= end; n++ {
		tk, err := ticket.NewTicket(eventID, n, rng.ID(), ticket.CreatedPreGenerated)
		require.NoError(t, err)
		ticketRepo.AddTicket(tk)
	}
	return rng
}

func intPtr(v int) *int { return &v }

func TestExpandRange_GrowsEndAndCreatesDelta(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newExpandRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	rng := seedRangeWithTickets(t, rangeRepo, ticketRepo, ev.ID(), 1, 10)

	result, err := uc.Execute(context.Background(), ExpandRangeCommand{
		EventID: ev.ID(),
		RangeID: rng.ID(),
		NewEnd:  intPtr(15),
	})
	require.NoError(t, err)

	assert.False(t, result.NoChange)
	assert.Equal(t, 10, result.PreviousEnd)
	assert.Equal(t, 15, result.End)
	assert.Equal(t, 5, result.TicketsCreated)
	assert.Len(t, ticketRepo.All(), 15)
	assert.Equal(t, 15, rng.End())
}

func TestExpandRange_SameBoundsIsNoOp(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newExpandRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	rng := seedRangeWithTickets(t, rangeRepo, ticketRepo, ev.ID(), 1, 10)

	result, err := uc.Execute(context.Background(), ExpandRangeCommand{
		EventID:  ev.ID(),
		RangeID:  rng.ID(),
		NewStart: intPtr(1),
		NewEnd:   intPtr(10),
	})
	require.NoError(t, err)

	assert.True(t, result.NoChange)
	assert.Zero(t, result.TicketsCreated)
	assert.Len(t, ticketRepo.All(), 10)
}

func TestExpandRange_ShrinkRejected(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newExpandRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	rng := seedRangeWithTickets(t, rangeRepo, ticketRepo, ev.ID(), 1, 10)

	_, err := uc.Execute(context.Background(), ExpandRangeCommand{
		EventID: ev.ID(),
		RangeID: rng.ID(),
		NewEnd:  intPtr(5),
	})
	require.Error(t, err)

	assert.Equal(t, 1, rng.Start())
	assert.Equal(t, 10, rng.End())
	assert.Len(t, ticketRepo.All(), 10)
}

func TestExpandRange_CollidingNumbersRejected(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newExpandRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	rng := seedRangeWithTickets(t, rangeRepo, ticketRepo, ev.ID(), 1, 10)

	// A loose ticket occupies number 12 outside any range.
	loose, err := ticket.NewImportedTicket(ev.ID(), 12, nil, nil, nil, nil, nil)
	require.NoError(t, err)
	ticketRepo.AddTicket(loose)

	_, err = uc.Execute(context.Background(), ExpandRangeCommand{
		EventID: ev.ID(),
		RangeID: rng.ID(),
		NewEnd:  intPtr(15),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "12")
	assert.Len(t, ticketRepo.All(), 11)
}

func TestExpandRange_OverlapWithOtherRangeRejected(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newExpandRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	rng := seedRangeWithTickets(t, rangeRepo, ticketRepo, ev.ID(), 1, 10)
	other, err := ticketrange.NewTicketRange(ev.ID(), 12, 20, "VIP", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(other)

	_, err = uc.Execute(context.Background(), ExpandRangeCommand{
		EventID: ev.ID(),
		RangeID: rng.ID(),
		NewEnd:  intPtr(15),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIP")
}

func TestGenerateTickets_SkipsExistingNumbers(t *testing.T) {
	rangeRepo := testutil.NewMockTicketRangeRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	uc := NewGenerateTicketsUseCase(ticketRepo, rangeRepo, testutil.NewNopLogger())

	ev := newTestEvent(t)
	rng, err := ticketrange.NewTicketRange(ev.ID(), 1, 10, "STANDARD", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(rng)

	for n := 1; n <= 4; n++ {
		tk, err := ticket.NewTicket(ev.ID(), n, rng.ID(), ticket.CreatedPreGenerated)
		require.NoError(t, err)
		ticketRepo.AddTicket(tk)
	}

	result, err := uc.Execute(context.Background(), GenerateTicketsCommand{
		Range:  rng,
		Origin: ticket.CreatedPreGenerated,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Created)
	assert.Equal(t, 4, result.Skipped)
	assert.Len(t, ticketRepo.All(), 10)
	assert.NotNil(t, rng.GeneratedAt())
}
