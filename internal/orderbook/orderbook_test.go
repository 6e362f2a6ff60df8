package orderbook

import (
	"testing"

	"clobengine/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id uint64, side common.Side, price, qty uint64, ts int64) *Order {
	return &Order{
		OrderID:           id,
		Owner:             common.NewIdentity("owner"),
		Side:              side,
		Price:             price,
		Quantity:          qty,
		RemainingQuantity: qty,
		Timestamp:         ts,
	}
}

func TestBidBookOrdersByPriceThenTime(t *testing.T) {
	book := NewBook(common.Bid)
	require.NoError(t, book.Insert(order(1, common.Bid, 99, 10, 1)))
	require.NoError(t, book.Insert(order(2, common.Bid, 101, 10, 2)))
	require.NoError(t, book.Insert(order(3, common.Bid, 101, 10, 1)))

	// Highest price first; among equal prices, earliest timestamp first.
	assert.Equal(t, uint64(3), book.Peek().OrderID)
}

func TestAskBookOrdersByPriceThenTime(t *testing.T) {
	book := NewBook(common.Ask)
	require.NoError(t, book.Insert(order(1, common.Ask, 101, 10, 1)))
	require.NoError(t, book.Insert(order(2, common.Ask, 99, 10, 2)))
	require.NoError(t, book.Insert(order(3, common.Ask, 99, 10, 1)))

	assert.Equal(t, uint64(3), book.Peek().OrderID)
}

func TestInsertRejectsAtCapacity(t *testing.T) {
	book := NewBook(common.Bid)
	for i := 0; i < MaxOrders; i++ {
		require.NoError(t, book.Insert(order(uint64(i+1), common.Bid, 1, 1, int64(i))))
	}
	err := book.Insert(order(9999, common.Bid, 1, 1, 9999))
	assert.ErrorIs(t, err, common.ErrOrderbookFull)
}

func TestRemoveByIDReturnsReservationTarget(t *testing.T) {
	book := NewBook(common.Bid)
	require.NoError(t, book.Insert(order(1, common.Bid, 10, 5, 1)))
	require.NoError(t, book.Insert(order(2, common.Bid, 12, 5, 2)))
	require.NoError(t, book.Insert(order(3, common.Bid, 8, 5, 3)))

	removed := book.RemoveByID(2)
	require.NotNil(t, removed)
	assert.Equal(t, uint64(2), removed.OrderID)
	assert.Equal(t, 2, book.Len())
	// Best remaining should still be order 1 (price 10 beats price 8).
	assert.Equal(t, uint64(1), book.Peek().OrderID)

	assert.Nil(t, book.RemoveByID(999))
}

func TestMatchFullyConsumesMaker(t *testing.T) {
	asks := NewBook(common.Ask)
	require.NoError(t, asks.Insert(order(1, common.Ask, 10, 5, 1)))

	taker := order(2, common.Bid, 10, 5, 2)
	fills := asks.Match(taker)

	require.Len(t, fills, 1)
	assert.Equal(t, uint64(1), fills[0].MakerOrderID)
	assert.Equal(t, uint64(5), fills[0].Quantity)
	assert.Equal(t, uint64(10), fills[0].Price)
	assert.Equal(t, uint64(0), taker.RemainingQuantity)
	assert.True(t, asks.IsEmpty())
}

func TestMatchPartialLeavesMakerResting(t *testing.T) {
	asks := NewBook(common.Ask)
	require.NoError(t, asks.Insert(order(1, common.Ask, 10, 10, 1)))

	taker := order(2, common.Bid, 10, 4, 2)
	fills := asks.Match(taker)

	require.Len(t, fills, 1)
	assert.Equal(t, uint64(4), fills[0].Quantity)
	assert.Equal(t, uint64(0), taker.RemainingQuantity)
	assert.Equal(t, 1, asks.Len())
	assert.Equal(t, uint64(6), asks.Peek().RemainingQuantity)
}

func TestMatchSweepsMultipleLevels(t *testing.T) {
	asks := NewBook(common.Ask)
	require.NoError(t, asks.Insert(order(1, common.Ask, 10, 20, 1)))
	require.NoError(t, asks.Insert(order(2, common.Ask, 11, 20, 2)))

	taker := order(3, common.Bid, 11, 30, 3)
	fills := asks.Match(taker)

	require.Len(t, fills, 2)
	assert.Equal(t, uint64(10), fills[0].Price)
	assert.Equal(t, uint64(20), fills[0].Quantity)
	assert.Equal(t, uint64(11), fills[1].Price)
	assert.Equal(t, uint64(10), fills[1].Quantity)
	assert.Equal(t, uint64(0), taker.RemainingQuantity)
	assert.Equal(t, 1, asks.Len())
	assert.Equal(t, uint64(10), asks.Peek().RemainingQuantity)
}

func TestMatchStopsWhenPriceNoLongerCrosses(t *testing.T) {
	asks := NewBook(common.Ask)
	require.NoError(t, asks.Insert(order(1, common.Ask, 12, 10, 1)))

	taker := order(2, common.Bid, 10, 10, 2)
	fills := asks.Match(taker)

	assert.Empty(t, fills)
	assert.Equal(t, uint64(10), taker.RemainingQuantity)
	assert.Equal(t, 1, asks.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	book := NewBook(common.Ask)
	require.NoError(t, book.Insert(order(1, common.Ask, 10, 10, 1)))

	clone := book.Clone()
	taker := order(2, common.Bid, 10, 10, 2)
	clone.Match(taker)

	assert.True(t, clone.IsEmpty())
	assert.False(t, book.IsEmpty())
}

func TestDepthSnapshotAggregatesByPrice(t *testing.T) {
	bids := NewBook(common.Bid)
	require.NoError(t, bids.Insert(order(1, common.Bid, 99, 10, 1)))
	require.NoError(t, bids.Insert(order(2, common.Bid, 99, 5, 2)))
	require.NoError(t, bids.Insert(order(3, common.Bid, 98, 7, 3)))

	depth := bids.DepthSnapshot()
	require.Len(t, depth, 2)
	assert.Equal(t, uint64(99), depth[0].Price)
	assert.Equal(t, uint64(15), depth[0].Quantity)
	assert.Equal(t, uint64(98), depth[1].Price)
}
