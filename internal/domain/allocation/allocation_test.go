package allocation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocation(t *testing.T) {
	memberID := uuid.New()
	rangeID := uuid.New()

	a, err := NewAllocation(memberID, rangeID, 10)
	require.NoError(t, err)

	assert.Equal(t, memberID, a.MemberID())
	assert.Equal(t, rangeID, a.RangeID())
	assert.Equal(t, 10, a.Quantity())
}

func TestNewAllocation_ZeroQuantityAllowed(t *testing.T) {
	_, err := NewAllocation(uuid.New(), uuid.New(), 0)
	assert.NoError(t, err)
}

func TestNewAllocation_InvalidInput(t *testing.T) {
	_, err := NewAllocation(uuid.Nil, uuid.New(), 1)
	assert.Error(t, err)

	_, err = NewAllocation(uuid.New(), uuid.Nil, 1)
	assert.Error(t, err)

	_, err = NewAllocation(uuid.New(), uuid.New(), -1)
	assert.Error(t, err)
}

func TestDeficitOutstanding(t *testing.T) {
	d := Deficit{Quantity: 10, LinkedCount: 3}
	assert.Equal(t, 7, d.Outstanding())

	over := Deficit{Quantity: 5, LinkedCount: 8}
	assert.Equal(t, -3, over.Outstanding())
}
