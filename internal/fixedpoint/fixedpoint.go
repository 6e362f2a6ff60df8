// Package fixedpoint implements checked integer arithmetic for lot/tick
// priced quantities: prices and quantities are integers in lot/tick units,
// and any overflow fails the calling operation rather than wrapping.
package fixedpoint

import (
	"math/bits"

	"clobengine/internal/common"
)

// CheckedAdd returns a+b, or ErrMathOverflow if it would wrap.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, common.ErrMathOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b, or ErrMathOverflow if it would underflow.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, common.ErrMathOverflow
	}
	return diff, nil
}

// CheckedMul returns a*b, or ErrMathOverflow if it would overflow 64 bits.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, common.ErrMathOverflow
	}
	return lo, nil
}

// QuoteAmount computes price*qty*quoteTickSize/baseLotSize, evaluated
// left-to-right with checked multiplies and a floored integer divide. The
// division is not required to be exact: callers are responsible for
// choosing lot/tick sizes that make it exact for every legal (price,
// quantity) pair they intend to support; this function never rejects a
// non-exact division, it floors.
func QuoteAmount(price, qty, quoteTickSize, baseLotSize uint64) (uint64, error) {
	step1, err := CheckedMul(price, qty)
	if err != nil {
		return 0, err
	}
	step2, err := CheckedMul(step1, quoteTickSize)
	if err != nil {
		return 0, err
	}
	return step2 / baseLotSize, nil
}

// BaseAmount computes qty*baseLotSize, checked.
func BaseAmount(qty, baseLotSize uint64) (uint64, error) {
	return CheckedMul(qty, baseLotSize)
}
