package common

// Records are the structured results engine operations return. The core
// never publishes them itself — persistence, replication, and on-wire
// emission are host concerns — the host is free to log, queue, or
// broadcast whatever it gets back.

type MarketInitialized struct {
	Authority     Identity
	BaseMint      Identity
	QuoteMint     Identity
	BaseLotSize   uint64
	QuoteTickSize uint64
}

type OrderPlaced struct {
	OrderID           uint64
	Owner             Identity
	Side              Side
	Price             uint64
	RemainingQuantity uint64
	Timestamp         int64
}

type OrderFilled struct {
	MakerOrderID uint64
	TakerOrderID uint64
	Price        uint64
	Quantity     uint64
	MakerOwner   Identity
	TakerOwner   Identity
	TakerSide    Side
}

type OrderCancelled struct {
	OrderID           uint64
	Owner             Identity
	Side              Side
	RemainingQuantity uint64
}

type UserDeposit struct {
	User       Identity
	Mint       Identity
	Amount     uint64
	NewBalance uint64
}

type UserWithdraw struct {
	User       Identity
	Mint       Identity
	Amount     uint64
	NewBalance uint64
}
