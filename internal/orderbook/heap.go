package orderbook

import (
	"container/heap"

	"clobengine/internal/common"
)

// MaxOrders is the fixed capacity of one side of the book.
const MaxOrders = 1024

// less reports whether a dominates b under a side's comparator: bids are
// max-by-price then min-by-timestamp, asks are min-by-price then
// min-by-timestamp. A single comparator value parameterizes both sides
// rather than two concrete heap types.
type lessFunc func(a, b *Order) bool

func bidLess(a, b *Order) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Timestamp < b.Timestamp
}

func askLess(a, b *Order) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Timestamp < b.Timestamp
}

// heapSlice adapts []*Order to container/heap.Interface using a comparator
// value.
type heapSlice struct {
	orders []*Order
	less   lessFunc
}

func (h heapSlice) Len() int            { return len(h.orders) }
func (h heapSlice) Less(i, j int) bool  { return h.less(h.orders[i], h.orders[j]) }
func (h heapSlice) Swap(i, j int)       { h.orders[i], h.orders[j] = h.orders[j], h.orders[i] }
func (h *heapSlice) Push(x interface{}) { h.orders = append(h.orders, x.(*Order)) }
func (h *heapSlice) Pop() interface{} {
	old := h.orders
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.orders = old[:n-1]
	return item
}

// Book is one side (bids or asks) of the order book: a fixed-capacity
// priority collection with a well-defined "best" order.
type Book struct {
	side common.Side
	h    heapSlice
}

// NewBook builds an empty book for the given side.
func NewBook(side common.Side) *Book {
	less := askLess
	if side == common.Bid {
		less = bidLess
	}
	return &Book{
		side: side,
		h:    heapSlice{orders: make([]*Order, 0, MaxOrders), less: less},
	}
}

// Len is the number of resting orders.
func (b *Book) Len() int { return b.h.Len() }

// IsEmpty reports whether the book holds no resting orders.
func (b *Book) IsEmpty() bool { return b.h.Len() == 0 }

// Insert adds order to the book, failing with ErrOrderbookFull at capacity.
// Postcondition: Peek returns an order that dominates all others under the
// side's comparator.
func (b *Book) Insert(order *Order) error {
	if b.h.Len() >= MaxOrders {
		return common.ErrOrderbookFull
	}
	heap.Push(&b.h, order)
	return nil
}

// Peek returns the best resting order without removing it, or nil if the
// book is empty.
func (b *Book) Peek() *Order {
	if b.h.Len() == 0 {
		return nil
	}
	return b.h.orders[0]
}

// FindByID is a read-only lookup, O(n) at MaxOrders.
func (b *Book) FindByID(orderID uint64) *Order {
	for _, o := range b.h.orders {
		if o.OrderID == orderID {
			return o
		}
	}
	return nil
}

// RemoveByID removes and returns the order with the given id, or nil if
// absent. heap.Remove swaps the target with the last element, shrinks the
// slice, then sifts the replacement up or down to restore heap order.
func (b *Book) RemoveByID(orderID uint64) *Order {
	for i, o := range b.h.orders {
		if o.OrderID == orderID {
			return heap.Remove(&b.h, i).(*Order)
		}
	}
	return nil
}

// Clone returns an independent deep-enough copy of the book (the Order
// values are copied; nothing else aliases the original's backing array).
// Used by the engine's validate phase to dry-run a match without mutating
// the real book.
func (b *Book) Clone() *Book {
	clone := &Book{side: b.side, h: heapSlice{orders: make([]*Order, len(b.h.orders)), less: b.h.less}}
	for i, o := range b.h.orders {
		cp := *o
		clone.h.orders[i] = &cp
	}
	return clone
}

// crosses reports whether the resting order crosses the incoming taker
// order: for a bid book being matched by an incoming ask, cross iff
// resting.price >= taker.price; for an ask book being matched by an
// incoming bid, cross iff resting.price <= taker.price.
func (b *Book) crosses(resting, taker *Order) bool {
	if b.side == common.Bid {
		return resting.Price >= taker.Price
	}
	return resting.Price <= taker.Price
}

// Match consumes crossing resting orders from this book against taker,
// in priority order, until taker is exhausted or the best resting order no
// longer crosses it. It mutates both the book and taker.RemainingQuantity,
// and returns the sequence of Fills produced, in the order they occurred.
func (b *Book) Match(taker *Order) []Fill {
	var fills []Fill

	for taker.RemainingQuantity > 0 {
		best := b.Peek()
		if best == nil || !b.crosses(best, taker) {
			break
		}

		maker := heap.Pop(&b.h).(*Order)

		qty := maker.RemainingQuantity
		if taker.RemainingQuantity < qty {
			qty = taker.RemainingQuantity
		}

		fills = append(fills, Fill{
			MakerOrderID: maker.OrderID,
			TakerOrderID: taker.OrderID,
			MakerOwner:   maker.Owner,
			MakerSide:    b.side,
			Price:        maker.Price,
			Quantity:     qty,
		})

		maker.RemainingQuantity -= qty
		taker.RemainingQuantity -= qty

		if maker.RemainingQuantity > 0 {
			// Price and timestamp are unchanged, so priority is unchanged;
			// reinsert rather than recompute position.
			heap.Push(&b.h, maker)
		}
	}

	return fills
}
