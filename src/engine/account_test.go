package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIndexOrderedByID(t *testing.T) {
	ai := NewAccountIndex()
	ai.Add(NewOrder(30, Bid, 10, 1, Account(7)))
	ai.Add(NewOrder(10, Ask, 11, 1, Account(7)))
	ai.Add(NewOrder(20, Bid, 9, 1, Account(7)))
	ai.Add(NewOrder(40, Bid, 9, 1, Account(8)))

	entries, err := ai.Entries(7)
	require.NoError(t, err)
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{10, 20, 30}, ids)
	assert.True(t, ai.Contains(8, 40))
	assert.False(t, ai.Contains(8, 30))
}

func TestAccountIndexIgnoresAnonymousOrders(t *testing.T) {
	ai := NewAccountIndex()
	ai.Add(NewOrder(1, Bid, 10, 1, nil))

	assert.Empty(t, ai.accounts)
}

func TestAccountIndexRemove(t *testing.T) {
	ai := NewAccountIndex()
	ai.Add(NewOrder(1, Bid, 10, 1, Account(7)))

	assert.True(t, ai.Remove(7, 1))
	assert.False(t, ai.Remove(7, 1))
	assert.False(t, ai.Remove(99, 1))

	// the account stays known once registered
	entries, err := ai.Entries(7)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = ai.Entries(99)
	var accountErr *AccountNotFoundError
	require.ErrorAs(t, err, &accountErr)
	assert.Equal(t, int64(99), accountErr.AccountID)
}
