// Package engine composes a market, a ledger, two order books, and a
// fill-event queue into the operations a host (wire server, CLI, test) can
// call: placing and cancelling orders, consuming fill events, and moving
// funds in and out of a user's balance. It performs no I/O and no logging —
// those are host concerns layered on top.
package engine

import (
	"clobengine/internal/common"
	"clobengine/internal/events"
	"clobengine/internal/fixedpoint"
	"clobengine/internal/ledger"
	"clobengine/internal/market"
	"clobengine/internal/orderbook"
)

// Engine is one trading pair's full runtime state.
type Engine struct {
	Market *market.Market
	Ledger *ledger.Ledger
	Bids   *orderbook.Book
	Asks   *orderbook.Book
	Events *events.Queue
}

// New builds an engine around an already-validated market.
func New(m *market.Market) *Engine {
	return &Engine{
		Market: m,
		Ledger: ledger.New(),
		Bids:   orderbook.NewBook(common.Bid),
		Asks:   orderbook.NewBook(common.Ask),
		Events: events.NewQueue(),
	}
}

// InitMarket validates market parameters, builds a fresh Engine around them,
// and returns the record a host publishes on successful initialization.
func InitMarket(authority, baseMint, quoteMint common.Identity, baseLotSize, quoteTickSize uint64) (*Engine, *common.MarketInitialized, error) {
	m, err := market.New(authority, baseMint, quoteMint, baseLotSize, quoteTickSize)
	if err != nil {
		return nil, nil, err
	}
	return New(m), &common.MarketInitialized{
		Authority:     authority,
		BaseMint:      baseMint,
		QuoteMint:     quoteMint,
		BaseLotSize:   baseLotSize,
		QuoteTickSize: quoteTickSize,
	}, nil
}

// bookFor returns the book an order of the given side rests on.
func (e *Engine) bookFor(side common.Side) *orderbook.Book {
	if side == common.Bid {
		return e.Bids
	}
	return e.Asks
}

// oppositeBookFor returns the book an order of the given side matches
// against.
func (e *Engine) oppositeBookFor(side common.Side) *orderbook.Book {
	return e.bookFor(side.Opposite())
}

// reservationCost computes how much of which mint a resting order of this
// side and (price, quantity) reserves: quote for a bid, base for an ask.
func (e *Engine) reservationCost(side common.Side, price, quantity uint64) (uint64, error) {
	if side == common.Bid {
		return fixedpoint.QuoteAmount(price, quantity, e.Market.QuoteTickSize, e.Market.BaseLotSize)
	}
	return fixedpoint.BaseAmount(quantity, e.Market.BaseLotSize)
}

// PlaceLimitOrderResult carries everything a successful placement produced,
// in the order the host should publish them.
type PlaceLimitOrderResult struct {
	Fills   []common.OrderFilled
	Placed  *common.OrderPlaced // nil if the order fully filled on arrival
	OrderID uint64
}

// PlaceLimitOrder validates the whole operation — pricing, balance
// sufficiency, a dry-run match, and queue/book capacity — before mutating
// any real state, then commits unconditionally. wallClockUnix seeds the
// market's monotonic logical clock.
func (e *Engine) PlaceLimitOrder(owner common.Identity, side common.Side, price, quantity uint64, tif common.TimeInForce, wallClockUnix int64) (*PlaceLimitOrderResult, error) {
	if price == 0 {
		return nil, common.ErrInvalidPrice
	}
	if quantity == 0 {
		return nil, common.ErrInvalidOrderSize
	}
	if e.Market.WouldOverflowNextOrderID() {
		return nil, common.ErrMathOverflow
	}

	own := e.bookFor(side)
	opposite := e.oppositeBookFor(side)

	reserveCost, err := e.reservationCost(side, price, quantity)
	if err != nil {
		return nil, err
	}
	if side == common.Bid {
		if !e.Ledger.HasSufficientQuote(owner, reserveCost) {
			return nil, common.ErrInsufficientBalance
		}
	} else if !e.Ledger.HasSufficientBase(owner, reserveCost) {
		return nil, common.ErrInsufficientBalance
	}

	taker := &orderbook.Order{
		OrderID:           e.Market.PeekNextOrderID(),
		Owner:             owner,
		Side:              side,
		Price:             price,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Timestamp:         e.Market.NextTimestamp(wallClockUnix),
	}

	dryRunBook := opposite.Clone()
	dryRunTaker := *taker
	dryFills := dryRunBook.Match(&dryRunTaker)

	if tif == common.FOK && dryRunTaker.RemainingQuantity > 0 {
		return nil, common.ErrFillOrKillNotFilled
	}

	if e.Events.Len()+uint64(len(dryFills)) > events.MaxEvents-1 {
		return nil, common.ErrEventQueueFull
	}

	residual := dryRunTaker.RemainingQuantity
	willRest := residual > 0 && tif == common.GTC
	if willRest && own.Len() >= orderbook.MaxOrders {
		return nil, common.ErrOrderbookFull
	}

	var residualReserve uint64
	if willRest {
		residualReserve, err = e.reservationCost(side, price, residual)
		if err != nil {
			return nil, err
		}
	}

	for _, fill := range dryFills {
		fillQuote, err := fixedpoint.QuoteAmount(fill.Price, fill.Quantity, e.Market.QuoteTickSize, e.Market.BaseLotSize)
		if err != nil {
			return nil, err
		}
		fillBase, err := fixedpoint.BaseAmount(fill.Quantity, e.Market.BaseLotSize)
		if err != nil {
			return nil, err
		}
		if side == common.Bid {
			if !e.Ledger.HasSufficientQuote(owner, fillQuote) {
				return nil, common.ErrInsufficientBalance
			}
		} else if !e.Ledger.HasSufficientBase(owner, fillBase) {
			return nil, common.ErrInsufficientBalance
		}
	}

	// Validation complete: commit for real. Replaying the match against the
	// live book reproduces the dry run exactly, since nothing observed by
	// Match (book contents, taker state) changed between the two runs.
	orderID := e.Market.AdvanceOrderID()
	taker.OrderID = orderID
	taker.Timestamp = e.Market.NextTimestamp(wallClockUnix)

	fills := opposite.Match(taker)

	result := &PlaceLimitOrderResult{OrderID: orderID}
	for _, fill := range fills {
		fillQuote, _ := fixedpoint.QuoteAmount(fill.Price, fill.Quantity, e.Market.QuoteTickSize, e.Market.BaseLotSize)
		fillBase, _ := fixedpoint.BaseAmount(fill.Quantity, e.Market.BaseLotSize)

		if side == common.Bid {
			_ = e.Ledger.CreditBase(owner, fillBase)
			_ = e.Ledger.DebitQuote(owner, fillQuote)
		} else {
			_ = e.Ledger.DebitBase(owner, fillBase)
			_ = e.Ledger.CreditQuote(owner, fillQuote)
		}

		_ = e.Events.Push(events.FillEvent{
			MakerOrderID: fill.MakerOrderID,
			TakerOrderID: fill.TakerOrderID,
			Price:        fill.Price,
			Quantity:     fill.Quantity,
			Timestamp:    taker.Timestamp,
			MakerOwner:   fill.MakerOwner,
			TakerOwner:   owner,
			Market:       e.Market.Authority,
			MakerSide:    fill.MakerSide,
		})

		result.Fills = append(result.Fills, common.OrderFilled{
			MakerOrderID: fill.MakerOrderID,
			TakerOrderID: fill.TakerOrderID,
			Price:        fill.Price,
			Quantity:     fill.Quantity,
			MakerOwner:   fill.MakerOwner,
			TakerOwner:   owner,
			TakerSide:    side,
		})
	}

	if taker.RemainingQuantity > 0 && tif == common.GTC {
		if side == common.Bid {
			_ = e.Ledger.DebitQuote(owner, residualReserve)
		} else {
			_ = e.Ledger.DebitBase(owner, residualReserve)
		}
		_ = own.Insert(taker)

		result.Placed = &common.OrderPlaced{
			OrderID:           taker.OrderID,
			Owner:             owner,
			Side:              side,
			Price:             taker.Price,
			RemainingQuantity: taker.RemainingQuantity,
			Timestamp:         taker.Timestamp,
		}
	}

	return result, nil
}

// CancelOrder removes a resting order and releases its reservation back to
// the owner's balance. Ownership is checked with a read-only lookup before
// any removal, so an unauthorized cancel never mutates the book.
func (e *Engine) CancelOrder(owner common.Identity, side common.Side, orderID uint64) (*common.OrderCancelled, error) {
	book := e.bookFor(side)

	order := book.FindByID(orderID)
	if order == nil {
		return nil, common.ErrOrderNotFound
	}
	if order.Owner != owner {
		return nil, common.ErrUnauthorized
	}

	released, err := e.reservationCost(side, order.Price, order.RemainingQuantity)
	if err != nil {
		return nil, err
	}

	removed := book.RemoveByID(orderID)
	if side == common.Bid {
		_ = e.Ledger.CreditQuote(owner, released)
	} else {
		_ = e.Ledger.CreditBase(owner, released)
	}

	return &common.OrderCancelled{
		OrderID:           removed.OrderID,
		Owner:             removed.Owner,
		Side:              side,
		RemainingQuantity: removed.RemainingQuantity,
	}, nil
}

// ConsumeEvents settles up to limit queued fill events for makers named in
// makerBalances, in FIFO order. An event whose maker is not in
// makerBalances is left at the head of the queue and processing stops —
// the caller simply hasn't fetched that maker's balance record yet this
// round, so the queue back-pressures until it does, rather than silently
// dropping the event as an unfetched-account would in the source this was
// modeled on.
func (e *Engine) ConsumeEvents(limit int, makerBalances map[common.Identity]struct{}) (int, error) {
	processed := 0
	for processed < limit {
		event, err := e.Events.Peek()
		if err != nil {
			break // empty queue, nothing left to do
		}
		if _, ok := makerBalances[event.MakerOwner]; !ok {
			break
		}

		event, _ = e.Events.Pop()

		fillQuote, err := fixedpoint.QuoteAmount(event.Price, event.Quantity, e.Market.QuoteTickSize, e.Market.BaseLotSize)
		if err != nil {
			return processed, err
		}
		fillBase, err := fixedpoint.BaseAmount(event.Quantity, e.Market.BaseLotSize)
		if err != nil {
			return processed, err
		}

		var settleErr error
		if event.MakerSide == common.Bid {
			// Maker bid filled: quote was already reserved on placement, now
			// credit base.
			settleErr = e.Ledger.CreditBase(event.MakerOwner, fillBase)
		} else {
			// Maker ask filled: base was already reserved on placement, now
			// credit quote.
			settleErr = e.Ledger.CreditQuote(event.MakerOwner, fillQuote)
		}
		if settleErr != nil {
			return processed, settleErr
		}

		processed++
	}
	return processed, nil
}

// Deposit credits amount of the given mint to owner's balance.
func (e *Engine) Deposit(owner common.Identity, isBase bool, amount uint64) (*common.UserDeposit, error) {
	bal, err := e.Ledger.Deposit(owner, isBase, amount)
	if err != nil {
		return nil, err
	}
	newBalance := bal.QuoteBalance
	mint := e.Market.QuoteMint
	if isBase {
		newBalance = bal.BaseBalance
		mint = e.Market.BaseMint
	}
	return &common.UserDeposit{User: owner, Mint: mint, Amount: amount, NewBalance: newBalance}, nil
}

// Withdraw debits amount of the given mint from owner's balance.
func (e *Engine) Withdraw(owner common.Identity, isBase bool, amount uint64) (*common.UserWithdraw, error) {
	bal, err := e.Ledger.Withdraw(owner, isBase, amount)
	if err != nil {
		return nil, err
	}
	newBalance := bal.QuoteBalance
	mint := e.Market.QuoteMint
	if isBase {
		newBalance = bal.BaseBalance
		mint = e.Market.BaseMint
	}
	return &common.UserWithdraw{User: owner, Mint: mint, Amount: amount, NewBalance: newBalance}, nil
}

// CloseUserBalance removes owner's balance record, failing unless both
// sides are already zero.
func (e *Engine) CloseUserBalance(owner common.Identity) error {
	return e.Ledger.Close(owner)
}
