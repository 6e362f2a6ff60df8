package common

import "errors"

// Error taxonomy shared by every core package. Every one of these is fatal
// to the calling operation; the engine guarantees none of them leave
// partial state behind.
var (
	// Arithmetic
	ErrMathOverflow = errors.New("math operation overflow")

	// Validation
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidOrderSize  = errors.New("invalid order size")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrSameMintAddresses = errors.New("same mint addresses")
	ErrInvalidTokenMint  = errors.New("invalid token mint")

	// Authorization
	ErrUnauthorized = errors.New("unauthorized")

	// Resource
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOrderbookFull       = errors.New("orderbook full")
	ErrEventQueueFull      = errors.New("event queue full")
	ErrEventQueueEmpty     = errors.New("event queue empty")

	// Lookup
	ErrOrderNotFound = errors.New("order not found")

	// Policy
	ErrFillOrKillNotFilled = errors.New("fill-or-kill order could not be completely filled")
)
