// Package ledger holds per-(user, market) base/quote balances and the
// reservation primitives the matching engine builds on. It depends only on
// common and fixedpoint.
package ledger

import (
	"clobengine/internal/common"
	"clobengine/internal/fixedpoint"
)

// UserBalance is a single user's holdings in one market. Both fields are
// non-negative at all times; reservations for open orders are already
// debited from these fields, not tracked separately.
type UserBalance struct {
	Owner        common.Identity
	BaseBalance  uint64
	QuoteBalance uint64
}

// Ledger is the whole per-market balance table. A user's balance record is
// created lazily on first deposit or credit and is only ever removed once
// both sides are zero.
type Ledger struct {
	balances map[common.Identity]*UserBalance
}

func New() *Ledger {
	return &Ledger{balances: make(map[common.Identity]*UserBalance)}
}

// Get returns the balance record for owner, or nil if none exists yet.
func (l *Ledger) Get(owner common.Identity) *UserBalance {
	return l.balances[owner]
}

func (l *Ledger) getOrCreate(owner common.Identity) *UserBalance {
	bal, ok := l.balances[owner]
	if !ok {
		bal = &UserBalance{Owner: owner}
		l.balances[owner] = bal
	}
	return bal
}

// Deposit credits amount of the given mint to owner's balance, creating the
// record if this is their first deposit in this market.
func (l *Ledger) Deposit(owner common.Identity, isBase bool, amount uint64) (*UserBalance, error) {
	if amount == 0 {
		return nil, common.ErrInvalidAmount
	}
	bal := l.getOrCreate(owner)
	if isBase {
		newBal, err := fixedpoint.CheckedAdd(bal.BaseBalance, amount)
		if err != nil {
			return nil, err
		}
		bal.BaseBalance = newBal
	} else {
		newBal, err := fixedpoint.CheckedAdd(bal.QuoteBalance, amount)
		if err != nil {
			return nil, err
		}
		bal.QuoteBalance = newBal
	}
	return bal, nil
}

// Withdraw debits amount of the given mint from owner's balance. Reserved
// funds are already excluded from the balance field, so this naturally
// cannot touch reservations backing open orders.
func (l *Ledger) Withdraw(owner common.Identity, isBase bool, amount uint64) (*UserBalance, error) {
	if amount == 0 {
		return nil, common.ErrInvalidAmount
	}
	bal := l.balances[owner]
	if bal == nil {
		return nil, common.ErrInsufficientBalance
	}

	if isBase {
		if bal.BaseBalance < amount {
			return nil, common.ErrInsufficientBalance
		}
		bal.BaseBalance -= amount
	} else {
		if bal.QuoteBalance < amount {
			return nil, common.ErrInsufficientBalance
		}
		bal.QuoteBalance -= amount
	}
	return bal, nil
}

// Close removes owner's balance record. It only succeeds once both sides
// are zero; a missing record is treated as already closed.
func (l *Ledger) Close(owner common.Identity) error {
	bal := l.balances[owner]
	if bal == nil {
		return nil
	}
	if bal.BaseBalance != 0 || bal.QuoteBalance != 0 {
		return common.ErrInsufficientBalance
	}
	delete(l.balances, owner)
	return nil
}

// HasSufficientBase reports whether owner can cover a base reservation of
// amount. A missing balance record has zero of everything.
func (l *Ledger) HasSufficientBase(owner common.Identity, amount uint64) bool {
	bal := l.balances[owner]
	return bal != nil && bal.BaseBalance >= amount
}

// HasSufficientQuote reports whether owner can cover a quote reservation of
// amount.
func (l *Ledger) HasSufficientQuote(owner common.Identity, amount uint64) bool {
	bal := l.balances[owner]
	return bal != nil && bal.QuoteBalance >= amount
}

// DebitBase reserves (or settles a taker's ask debit of) amount base units
// from owner's balance. The caller must have already checked sufficiency;
// an underflow here is a fatal invariant violation.
func (l *Ledger) DebitBase(owner common.Identity, amount uint64) error {
	bal := l.balances[owner]
	if bal == nil || bal.BaseBalance < amount {
		return common.ErrInsufficientBalance
	}
	bal.BaseBalance -= amount
	return nil
}

// DebitQuote is DebitBase's quote-side counterpart.
func (l *Ledger) DebitQuote(owner common.Identity, amount uint64) error {
	bal := l.balances[owner]
	if bal == nil || bal.QuoteBalance < amount {
		return common.ErrInsufficientBalance
	}
	bal.QuoteBalance -= amount
	return nil
}

// CreditBase adds amount base units back to owner's balance (cancel
// release, fill settlement, maker credit via consume_events).
func (l *Ledger) CreditBase(owner common.Identity, amount uint64) error {
	bal := l.getOrCreate(owner)
	newBal, err := fixedpoint.CheckedAdd(bal.BaseBalance, amount)
	if err != nil {
		return err
	}
	bal.BaseBalance = newBal
	return nil
}

// CreditQuote is CreditBase's quote-side counterpart.
func (l *Ledger) CreditQuote(owner common.Identity, amount uint64) error {
	bal := l.getOrCreate(owner)
	newBal, err := fixedpoint.CheckedAdd(bal.QuoteBalance, amount)
	if err != nil {
		return err
	}
	bal.QuoteBalance = newBal
	return nil
}
