package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideBookBidOrdering(t *testing.T) {
	sb := NewSideBook(Bid)

	sb.InsertOrder(NewOrder(1, Bid, 10, 100, nil))
	sb.InsertOrder(NewOrder(2, Bid, 12, 200, nil))
	sb.InsertOrder(NewOrder(3, Bid, 11, 300, nil))
	sb.InsertOrder(NewOrder(4, Bid, 12, 50, nil))

	best, ok := sb.BestPrice()
	require.True(t, ok)
	assert.Equal(t, float32(12), best)

	prices := make([]float32, 0)
	for level := range sb.Depth(10) {
		prices = append(prices, level.Price)
	}
	assert.Equal(t, []float32{12, 11, 10}, prices)

	assert.Equal(t, int64(650), sb.TotalVolume())
	assert.Equal(t, int64(4), sb.NumOrders())
	assert.Equal(t, 3, sb.NumLevels())
}

func TestSideBookAskOrdering(t *testing.T) {
	sb := NewSideBook(Ask)

	sb.InsertOrder(NewOrder(1, Ask, 10, 100, nil))
	sb.InsertOrder(NewOrder(2, Ask, 12, 200, nil))
	sb.InsertOrder(NewOrder(3, Ask, -1.5, 300, nil))

	best, ok := sb.BestPrice()
	require.True(t, ok)
	assert.Equal(t, float32(-1.5), best)

	prices := make([]float32, 0)
	for level := range sb.Depth(10) {
		prices = append(prices, level.Price)
	}
	assert.Equal(t, []float32{-1.5, 10, 12}, prices)
}

func TestSideBookDepthIsTruncatedAndRestartable(t *testing.T) {
	sb := NewSideBook(Ask)
	for i := int64(1); i <= 5; i++ {
		sb.InsertOrder(NewOrder(i, Ask, float32(i), i*10, nil))
		sb.InsertOrder(NewOrder(i+100, Ask, float32(i), 1, nil))
	}

	depth := sb.Depth(3)
	first := slices.Collect(depth)
	second := slices.Collect(depth)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, LevelStats{Price: 1, Volume: 11, NumOrders: 2}, first[0])
	assert.Equal(t, LevelStats{Price: 3, Volume: 31, NumOrders: 2}, first[2])

	assert.Empty(t, slices.Collect(sb.Depth(0)))
	assert.Len(t, slices.Collect(sb.Depth(100)), 5)
}

func TestSideBookDeleteOrder(t *testing.T) {
	sb := NewSideBook(Bid)
	sb.InsertOrder(NewOrder(1, Bid, 12, 100, nil))
	sb.InsertOrder(NewOrder(2, Bid, 11, 200, nil))

	_, err := sb.DeleteOrder(13, 1)
	var levelErr *PriceLevelNotFoundError
	require.ErrorAs(t, err, &levelErr)

	_, err = sb.DeleteOrder(12, 99)
	var orderErr *OrderNotFoundError
	require.ErrorAs(t, err, &orderErr)

	// failed deletes leave aggregates alone
	assert.Equal(t, int64(300), sb.TotalVolume())
	assert.Equal(t, int64(2), sb.NumOrders())

	removed, err := sb.DeleteOrder(12, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed.ID)

	best, ok := sb.BestPrice()
	require.True(t, ok)
	assert.Equal(t, float32(11), best)
	assert.Equal(t, 1, sb.NumLevels())

	_, err = sb.DeleteOrder(11, 2)
	require.NoError(t, err)

	_, ok = sb.BestPrice()
	assert.False(t, ok)
	assert.True(t, sb.IsEmpty())
	assert.Equal(t, int64(0), sb.TotalVolume())
	assert.Equal(t, int64(0), sb.NumOrders())
}

func TestSideBookOrdersWalk(t *testing.T) {
	sb := NewSideBook(Bid)
	sb.InsertOrder(NewOrder(1, Bid, 10, 1, nil))
	sb.InsertOrder(NewOrder(2, Bid, 11, 1, nil))
	sb.InsertOrder(NewOrder(3, Bid, 10, 1, nil))
	sb.InsertOrder(NewOrder(4, Bid, 11, 1, nil))

	ids := make([]int64, 0)
	for o := range sb.Orders() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int64{2, 4, 1, 3}, ids)

	o, ok := sb.Order(10, 3)
	require.True(t, ok)
	assert.Equal(t, int64(3), o.ID)
	_, ok = sb.Order(10, 2)
	assert.False(t, ok)
}
