package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talao/internal/application/testutil"
	"talao/internal/domain/ticket"
)

func TestToggleReturned_FlipsWithoutFlow(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	uc := NewToggleReturnedUseCase(eventRepo, ticketRepo, testutil.NewNopLogger())

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 5, "STANDARD")
	tickets := addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 5)

	result, err := uc.Execute(context.Background(), ToggleReturnedCommand{EventID: ev.ID(), TicketID: tickets[0].ID()})
	require.NoError(t, err)
	assert.True(t, result.Returned)

	result, err = uc.Execute(context.Background(), ToggleReturnedCommand{EventID: ev.ID(), TicketID: tickets[0].ID()})
	require.NoError(t, err)
	assert.False(t, result.Returned)
}

func TestCreateTicket_AfterImport(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	memberRepo := testutil.NewMockMemberRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	uc := NewCreateTicketUseCase(eventRepo, rangeRepo, memberRepo, ticketRepo, testutil.NewNopLogger())

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)

	name := "Walk-in buyer"
	result, err := uc.Execute(context.Background(), CreateTicketCommand{
		EventID: ev.ID(),
		Number:  501,
		Name:    &name,
	})
	require.NoError(t, err)

	saved, err := ticketRepo.GetByID(context.Background(), result.TicketID)
	require.NoError(t, err)
	assert.Equal(t, 501, saved.Number())
	assert.Equal(t, ticket.CreatedAfterImport, saved.Created())
	require.NotNil(t, saved.Name())
	assert.Equal(t, name, *saved.Name())
}

func TestCreateTicket_DuplicateNumber(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	memberRepo := testutil.NewMockMemberRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	uc := NewCreateTicketUseCase(eventRepo, rangeRepo, memberRepo, ticketRepo, testutil.NewNopLogger())

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 5, "STANDARD")
	addTickets(t, ticketRepo, ev.ID(), rng.ID(), 1, 5)

	_, err := uc.Execute(context.Background(), CreateTicketCommand{EventID: ev.ID(), Number: 3})
	assert.Error(t, err)
}

func TestCreateTicket_NumberOutsideRange(t *testing.T) {
	eventRepo := testutil.NewMockEventRepository()
	rangeRepo := testutil.NewMockTicketRangeRepository()
	memberRepo := testutil.NewMockMemberRepository()
	ticketRepo := testutil.NewMockTicketRepository()
	uc := NewCreateTicketUseCase(eventRepo, rangeRepo, memberRepo, ticketRepo, testutil.NewNopLogger())

	ev := newTestEvent(t, nil)
	eventRepo.AddEvent(ev)
	rng := newTestRange(t, ev.ID(), 1, 100, "STANDARD")
	rangeRepo.AddRange(rng)

	rangeID := rng.ID()
	_, err := uc.Execute(context.Background(), CreateTicketCommand{
		EventID: ev.ID(),
		Number:  500,
		RangeID: &rangeID,
	})
	assert.Error(t, err)
}

func TestDeleteTicket_AlwaysRejected(t *testing.T) {
	uc := NewDeleteTicketUseCase(testutil.NewNopLogger())

	ev := newTestEvent(t, nil)
	err := uc.Execute(context.Background(), DeleteTicketCommand{EventID: ev.ID()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be deleted")
}
