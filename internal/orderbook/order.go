// Package orderbook implements the two priority structures (bids, asks) the
// matching engine matches against, plus the price-time matching algorithm
// itself.
package orderbook

import "clobengine/internal/common"

// Order is immutable after creation except for RemainingQuantity.
type Order struct {
	OrderID           uint64
	Owner             common.Identity
	Side              common.Side
	Price             uint64
	Quantity          uint64
	RemainingQuantity uint64
	Timestamp         int64
}

// Fill is a transient record of one resting order absorbing part (or all)
// of an incoming order's quantity. It is never stored; it is consumed
// immediately by the engine into ledger settlement and a FillEvent.
type Fill struct {
	MakerOrderID uint64
	TakerOrderID uint64
	MakerOwner   common.Identity
	MakerSide    common.Side
	Price        uint64
	Quantity     uint64
}
