package orderbook

import (
	"sort"

	"github.com/tidwall/btree"

	"clobengine/internal/common"
)

// PriceLevel aggregates the resting orders at a single price, ordered by
// arrival (earliest first).
type PriceLevel struct {
	Price    uint64
	Orders   []*Order
	Quantity uint64
}

// DepthSnapshot is a read-only, price-ordered view of one side of the book,
// aggregated by price level for market-data publishing.
func (b *Book) DepthSnapshot() []*PriceLevel {
	less := func(x, y *PriceLevel) bool {
		if b.side == common.Bid {
			return x.Price > y.Price
		}
		return x.Price < y.Price
	}

	tree := btree.NewBTreeG(less)
	for _, o := range b.h.orders {
		level, ok := tree.Get(&PriceLevel{Price: o.Price})
		if !ok {
			level = &PriceLevel{Price: o.Price}
			tree.Set(level)
		}
		level.Orders = append(level.Orders, o)
		level.Quantity += o.RemainingQuantity
	}

	levels := make([]*PriceLevel, 0, tree.Len())
	tree.Scan(func(level *PriceLevel) bool {
		sort.Slice(level.Orders, func(i, j int) bool {
			return level.Orders[i].Timestamp < level.Orders[j].Timestamp
		})
		levels = append(levels, level)
		return true
	})
	return levels
}
