package ticket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicket(t *testing.T) {
	eventID := uuid.New()
	rangeID := uuid.New()

	tk, err := NewTicket(eventID, 42, rangeID, CreatedPreGenerated)
	require.NoError(t, err)

	assert.Equal(t, eventID, tk.EventID())
	assert.Equal(t, 42, tk.Number())
	require.NotNil(t, tk.RangeID())
	assert.Equal(t, rangeID, *tk.RangeID())
	assert.False(t, tk.IsAssigned())
	assert.False(t, tk.IsDelivered())
	assert.False(t, tk.Returned())
	assert.Equal(t, CreatedPreGenerated, tk.Created())
}

func TestNewTicket_InvalidInput(t *testing.T) {
	_, err := NewTicket(uuid.Nil, 1, uuid.New(), CreatedPreGenerated)
	assert.Error(t, err)

	_, err = NewTicket(uuid.New(), -1, uuid.New(), CreatedPreGenerated)
	assert.Error(t, err)

	_, err = NewTicket(uuid.New(), 1, uuid.New(), Created("BOGUS"))
	assert.Error(t, err)
}

func TestAssignTo(t *testing.T) {
	tk, err := NewTicket(uuid.New(), 7, uuid.New(), CreatedPreGenerated)
	require.NoError(t, err)

	memberID := uuid.New()
	allocationID := uuid.New()
	require.NoError(t, tk.AssignTo(memberID, &allocationID))

	require.NotNil(t, tk.MemberID())
	assert.Equal(t, memberID, *tk.MemberID())
	require.NotNil(t, tk.AllocationID())
	assert.Equal(t, allocationID, *tk.AllocationID())
	assert.True(t, tk.IsAssigned())
}

func TestAssignTo_AlreadyAssigned(t *testing.T) {
	tk, err := NewTicket(uuid.New(), 7, uuid.New(), CreatedPreGenerated)
	require.NoError(t, err)
	require.NoError(t, tk.AssignTo(uuid.New(), nil))

	err = tk.AssignTo(uuid.New(), nil)
	assert.Error(t, err)
}

func TestDetach_ResetsReturned(t *testing.T) {
	tk, err := NewTicket(uuid.New(), 7, uuid.New(), CreatedPreGenerated)
	require.NoError(t, err)
	require.NoError(t, tk.AssignTo(uuid.New(), nil))
	tk.ToggleReturned()

	wasReturned, err := tk.Detach()
	require.NoError(t, err)

	assert.True(t, wasReturned)
	assert.Nil(t, tk.MemberID())
	assert.Nil(t, tk.AllocationID())
	assert.False(t, tk.Returned())
}

func TestDetach_NotAssigned(t *testing.T) {
	tk, err := NewTicket(uuid.New(), 7, uuid.New(), CreatedPreGenerated)
	require.NoError(t, err)

	_, err = tk.Detach()
	assert.Error(t, err)
}

func TestMarkDelivered(t *testing.T) {
	tk, err := NewTicket(uuid.New(), 7, uuid.New(), CreatedPreGenerated)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, tk.MarkDelivered(now))
	assert.True(t, tk.IsDelivered())

	err = tk.MarkDelivered(now.Add(time.Minute))
	assert.Error(t, err)
	assert.Equal(t, now, *tk.DeliveredAt())
}

func TestIsCritica(t *testing.T) {
	tk, err := NewTicket(uuid.New(), 7, uuid.New(), CreatedPreGenerated)
	require.NoError(t, err)

	assert.False(t, tk.IsCritica())
	tk.ToggleReturned()
	assert.False(t, tk.IsCritica())
	require.NoError(t, tk.MarkDelivered(time.Now()))
	assert.True(t, tk.IsCritica())
}

func TestNewFlow_RequiresValidType(t *testing.T) {
	_, err := NewFlow(uuid.New(), uuid.New(), FlowType("BOGUS"), nil, nil, nil)
	assert.Error(t, err)

	f, err := NewFlow(uuid.New(), uuid.New(), FlowAssigned, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, FlowAssigned, f.Type())
}
