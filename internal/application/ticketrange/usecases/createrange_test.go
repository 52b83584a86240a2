package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/event"
	"talao/internal/domain/ticket"
	"talao/internal/domain/ticketrange"
)

func newTestEvent(t *testing.T) *event.Event {
	t.Helper()
	ev, err := event.ReconstructEvent(uuid.New(), "Festa Junina", false, nil, time.Now())
	require.NoError(t, err)
	return ev
}

func newReadOnlyEvent(t *testing.T) *event.Event {
	t.Helper()
	ev, err := event.ReconstructEvent(uuid.New(), "Festa Encerrada", true, nil, time.Now())
	require.NoError(t, err)
	return ev
}

func newCreateRangeFixture(t *testing.T) (
	*testutil.MockEventRepository,
	*testutil.MockTicketRangeRepository,
	*testutil.MockTicketRepository,
	*CreateRangeUseCase,
) {
	t.Helper()
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	txManager, err := testutil.NewTxManager()
	require.NoError(t, err)

	generate := NewGenerateTicketsUseCase(ticketRepo, rangeRepo, testutil.NewNopLogger())
	uc := NewCreateRangeUseCase(eventRepo, rangeRepo, generate, txManager, testutil.NewNopLogger())
	return eventRepo, rangeRepo, ticketRepo, uc
}

func TestCreateRange_GeneratesInventory(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newCreateRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)

	result, err := uc.Execute(context.Background(), CreateRangeCommand{
		EventID: ev.ID(),
		Start:   1,
		End:     50,
		Type:    "STANDARD",
	})
	require.NoError(t, err)

	assert.Equal(t, 50, result.TicketsCreated)
	assert.Len(t, ticketRepo.All(), 50)

	rng, err := rangeRepo.GetByID(context.Background(), result.RangeID)
	require.NoError(t, err)
	assert.NotNil(t, rng.GeneratedAt())

	for _, tk := range ticketRepo.All() {
		assert.Equal(t, ticket.CreatedPreGenerated, tk.Created())
		assert.False(t, tk.IsAssigned())
		require.NotNil(t, tk.RangeID())
		assert.Equal(t, result.RangeID, *tk.RangeID())
	}
}

func TestCreateRange_OverlapNamesConflictingRange(t *testing.T) {
	eventRepo, rangeRepo, _, uc := newCreateRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	existing, err := ticketrange.NewTicketRange(ev.ID(), 100, 200, "VIP", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(existing)

	_, err = uc.Execute(context.Background(), CreateRangeCommand{
		EventID: ev.ID(),
		Start:   150,
		End:     250,
		Type:    "STANDARD",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIP")
}

func TestCreateRange_AdjacentRangesAllowed(t *testing.T) {
	eventRepo, rangeRepo, _, uc := newCreateRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	existing, err := ticketrange.NewTicketRange(ev.ID(), 1, 100, "VIP", nil)
	require.NoError(t, err)
	rangeRepo.AddRange(existing)

	result, err := uc.Execute(context.Background(), CreateRangeCommand{
		EventID: ev.ID(),
		Start:   101,
		End:     150,
		Type:    "STANDARD",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.TicketsCreated)
}

func TestCreateRange_SaveFailureCreatesNoTickets(t *testing.T) {
	eventRepo, rangeRepo, ticketRepo, uc := newCreateRangeFixture(t)

	ev := newTestEvent(t)
	eventRepo.AddEvent(ev)
	rangeRepo.SaveErr = errors.New("disk I/O error")

	_, err := uc.Execute(context.Background(), CreateRangeCommand{
		EventID: ev.ID(),
		Start:   1,
		End:     20,
		Type:    "STANDARD",
	})
	require.Error(t, err)

	assert.Empty(t, ticketRepo.All())
	ranges, err := rangeRepo.ListByEvent(context.Background(), ev.ID())
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestCreateRange_ReadOnlyEvent(t *testing.T) {
	eventRepo, _, _, uc := newCreateRangeFixture(t)

	ev := newReadOnlyEvent(t)
	eventRepo.AddEvent(ev)

	_, err := uc.Execute(context.Background(), CreateRangeCommand{
		EventID: ev.ID(),
		Start:   1,
		End:     10,
		Type:    "STANDARD",
	})
	assert.Error(t, err)
}

func TestCreateRange_EventNotFound(t *testing.T) {
	_, _, _, uc := newCreateRangeFixture(t)

	_, err := uc.Execute(context.Background(), CreateRangeCommand{
		EventID: uuid.New(),
		Start:   1,
		End:     10,
		Type:    "STANDARD",
	})
	assert.Error(t, err)
}
