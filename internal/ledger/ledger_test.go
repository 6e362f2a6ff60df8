package ledger

import (
	"testing"

	"clobengine/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositCreatesBalance(t *testing.T) {
	l := New()
	alice := common.NewIdentity("alice")

	bal, err := l.Deposit(alice, true, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal.BaseBalance)
	assert.Equal(t, uint64(0), bal.QuoteBalance)
}

func TestDepositZeroAmountRejected(t *testing.T) {
	l := New()
	_, err := l.Deposit(common.NewIdentity("alice"), true, 0)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	l := New()
	alice := common.NewIdentity("alice")
	_, err := l.Deposit(alice, true, 10)
	require.NoError(t, err)

	_, err = l.Withdraw(alice, true, 20)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
}

func TestWithdrawUnknownUser(t *testing.T) {
	l := New()
	_, err := l.Withdraw(common.NewIdentity("ghost"), true, 1)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
}

func TestCloseRequiresZeroBalances(t *testing.T) {
	l := New()
	alice := common.NewIdentity("alice")
	_, err := l.Deposit(alice, true, 10)
	require.NoError(t, err)

	err = l.Close(alice)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	_, err = l.Withdraw(alice, true, 10)
	require.NoError(t, err)

	err = l.Close(alice)
	assert.NoError(t, err)
	assert.Nil(t, l.Get(alice))
}

func TestCreditDebitRoundTrip(t *testing.T) {
	l := New()
	alice := common.NewIdentity("alice")
	_, err := l.Deposit(alice, false, 1_000)
	require.NoError(t, err)

	require.NoError(t, l.DebitQuote(alice, 400))
	assert.True(t, l.HasSufficientQuote(alice, 600))
	assert.False(t, l.HasSufficientQuote(alice, 601))

	require.NoError(t, l.CreditQuote(alice, 400))
	assert.Equal(t, uint64(1_000), l.Get(alice).QuoteBalance)
}
