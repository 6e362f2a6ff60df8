// Package market holds the immutable-ish parameters of a single trading
// pair: lot/tick sizes and the monotonic order-id/timestamp counters. It has
// no dependencies on the other core packages.
package market

import (
	"math"

	"clobengine/internal/common"
)

// Market is a singleton per trading pair. Only next_order_id and the
// logical clock mutate after construction.
type Market struct {
	Authority     common.Identity
	BaseMint      common.Identity
	QuoteMint     common.Identity
	BaseLotSize   uint64
	QuoteTickSize uint64

	nextOrderID uint64
	lastClock   int64
}

// New validates market parameters and returns a fresh Market with its order
// id counter starting at 1.
func New(authority, baseMint, quoteMint common.Identity, baseLotSize, quoteTickSize uint64) (*Market, error) {
	if baseMint == quoteMint {
		return nil, common.ErrSameMintAddresses
	}
	if baseLotSize == 0 || quoteTickSize == 0 {
		return nil, common.ErrInvalidParameter
	}

	return &Market{
		Authority:     authority,
		BaseMint:      baseMint,
		QuoteMint:     quoteMint,
		BaseLotSize:   baseLotSize,
		QuoteTickSize: quoteTickSize,
		nextOrderID:   1,
	}, nil
}

// PeekNextOrderID returns the id the next successful place_limit_order will
// receive, without consuming it.
func (m *Market) PeekNextOrderID() uint64 {
	return m.nextOrderID
}

// WouldOverflowNextOrderID reports whether advancing the counter past the
// peeked id would overflow — used by the engine's validate phase so the
// counter is only ever actually advanced once nothing else can fail.
func (m *Market) WouldOverflowNextOrderID() bool {
	return m.nextOrderID == math.MaxUint64
}

// AdvanceOrderID consumes PeekNextOrderID's value and increments the
// counter. Callers must have already checked WouldOverflowNextOrderID.
func (m *Market) AdvanceOrderID() uint64 {
	id := m.nextOrderID
	m.nextOrderID++
	return id
}

// NextTimestamp returns a value strictly greater than every timestamp it
// has previously returned for this market, tracking wall-clock seconds when
// the clock is advancing faster than calls arrive, and a logical increment
// otherwise. No two orders in the same market ever receive the same
// timestamp, and no ledger walk is required to detect collisions.
func (m *Market) NextTimestamp(wallClockUnix int64) int64 {
	if wallClockUnix > m.lastClock {
		m.lastClock = wallClockUnix
	} else {
		m.lastClock++
	}
	return m.lastClock
}
