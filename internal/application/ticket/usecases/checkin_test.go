package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/ticket"
)

func newCheckInFixture(t *testing.T) (
	*testutil.MockEventRepository,
	*testutil.MockTicketRepository,
	*testutil.MockTicketFlowRepository,
	*CheckInUseCase,
) {
	t.Helper()
	eventRepo := testutil.NewMockEventRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	flowRepo := testutil.NewMockTicketFlowRepository()
	txManager, err := testutil.NewTxManager()
	require.NoError(t, err)

	uc := NewCheckInUseCase(eventRepo, ticketRepo, flowRepo, txManager, testutil.NewNopLogger())
	return eventRepo, ticketRepo, flowRepo, uc
}

func TestCheckIn_FirstScanWins(t *testing.T) {
	eventRepo, ticketRepo, flowRepo, uc := newCheckInFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 10, "STANDARD")
	tickets := addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 10)
	m := newTestMember(t, ev.ID(), "Holder", nil)
	require.NoError(t, tickets[6].AssignTo(m.ID(), nil))

	result, err := uc.Execute(context.Background(), CheckInCommand{EventID: ev.ID(), Number: 7})
	require.NoError(t, err)

	assert.False(t, result.AlreadyCheckedIn)
	assert.Equal(t, 7, result.Number)
	assert.False(t, result.DeliveredAt.IsZero())
	require.NotNil(t, result.MemberID)
	assert.Equal(t, m.ID(), *result.MemberID)

	flows := flowRepo.Flows()
	require.Len(t, flows, 1)
	assert.Equal(t, ticket.FlowCheckedIn, flows[0].Type())
}

func TestCheckIn_RepeatedScanIsIdempotent(t *testing.T) {
	eventRepo, ticketRepo, flowRepo, uc := newCheckInFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 10, "STANDARD")
	addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 10)

	first, err := uc.Execute(context.Background(), CheckInCommand{EventID: ev.ID(), Number: 3})
	require.NoError(t, err)
	require.False(t, first.AlreadyCheckedIn)

	second, err := uc.Execute(context.Background(), CheckInCommand{EventID: ev.ID(), Number: 3})
	require.NoError(t, err)

	assert.True(t, second.AlreadyCheckedIn)
	assert.Equal(t, first.DeliveredAt, second.DeliveredAt)

	// Only the winning scan appends a flow.
	assert.Len(t, flowRepo.Flows(), 1)
}

func TestCheckIn_UnknownNumber(t *testing.T) {
	eventRepo, _, _, uc := newCheckInFixture(t)

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)

	_, err := uc.Execute(context.Background(), CheckInCommand{EventID: ev.ID(), Number: 999})
	assert.Error(t, err)
}

func TestCheckIn_ReadOnlyEvent(t *testing.T) {
	eventRepo, ticketRepo, _, uc := newCheckInFixture(t)

	ev := newReadOnlyEvent(t)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 5, "STANDARD")
	addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 5)

	_, err := uc.Execute(context.Background(), CheckInCommand{EventID: ev.ID(), Number: 1})
	assert.Error(t, err)
}
