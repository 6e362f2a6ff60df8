// Package wire implements the binary TCP protocol a client uses to drive
// an engine.Engine: fixed big-endian headers followed by a type-specific
// body, hand-rolled rather than run through a general-purpose codec.
package wire

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"

	"clobengine/internal/common"
	"clobengine/internal/engine"
)

var (
	ErrInvalidMessageType = errors.New("wire: invalid message type")
	ErrMessageTooShort    = errors.New("wire: message too short")
)

// MessageType identifies the body that follows the base header.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	PlaceLimitOrder
	CancelOrder
	Deposit
	Withdraw
	CloseBalance
	ConsumeEvents
)

// ReportType identifies the body that follows a Report's fixed fields.
type ReportType uint8

const (
	ExecutionReport ReportType = iota
	ErrorReport
)

// BaseHeaderLen is type (2 bytes) + request id (16-byte uuid).
const BaseHeaderLen = 2 + 16

// RequestID is a client-chosen correlation id, echoed back on the Report.
type RequestID [16]byte

func NewRequestID() RequestID {
	var id RequestID
	raw := uuid.New()
	copy(id[:], raw[:])
	return id
}

// Message is anything decodable from a client frame.
type Message interface {
	Type() MessageType
}

// parseHeader splits type and request id off the front of a frame.
func parseHeader(buf []byte) (MessageType, RequestID, []byte, error) {
	if len(buf) < BaseHeaderLen {
		return 0, RequestID{}, nil, ErrMessageTooShort
	}
	typ := MessageType(binary.BigEndian.Uint16(buf[0:2]))
	var reqID RequestID
	copy(reqID[:], buf[2:18])
	return typ, reqID, buf[18:], nil
}

// PlaceLimitOrderMessage requests a new resting/matching order.
type PlaceLimitOrderMessage struct {
	RequestID RequestID
	Owner     common.Identity
	Side      common.Side
	Price     uint64
	Quantity  uint64
	TIF       common.TimeInForce
	WallClock int64
}

func (PlaceLimitOrderMessage) Type() MessageType { return PlaceLimitOrder }

const placeLimitOrderBodyLen = 32 + 1 + 8 + 8 + 1 + 8

func parsePlaceLimitOrder(reqID RequestID, body []byte) (PlaceLimitOrderMessage, error) {
	if len(body) < placeLimitOrderBodyLen {
		return PlaceLimitOrderMessage{}, ErrMessageTooShort
	}
	m := PlaceLimitOrderMessage{RequestID: reqID}
	copy(m.Owner[:], body[0:32])
	m.Side = common.Side(body[32])
	m.Price = binary.BigEndian.Uint64(body[33:41])
	m.Quantity = binary.BigEndian.Uint64(body[41:49])
	m.TIF = common.TimeInForce(body[49])
	m.WallClock = int64(binary.BigEndian.Uint64(body[50:58]))
	return m, nil
}

// CancelOrderMessage requests a resting order's removal.
type CancelOrderMessage struct {
	RequestID RequestID
	Owner     common.Identity
	Side      common.Side
	OrderID   uint64
}

func (CancelOrderMessage) Type() MessageType { return CancelOrder }

const cancelOrderBodyLen = 32 + 1 + 8

func parseCancelOrder(reqID RequestID, body []byte) (CancelOrderMessage, error) {
	if len(body) < cancelOrderBodyLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m := CancelOrderMessage{RequestID: reqID}
	copy(m.Owner[:], body[0:32])
	m.Side = common.Side(body[32])
	m.OrderID = binary.BigEndian.Uint64(body[33:41])
	return m, nil
}

// BalanceMessage carries a deposit, withdraw, or close request. Amount is
// unused (and absent from the wire body) for CloseBalance.
type BalanceMessage struct {
	RequestID RequestID
	Type_     MessageType
	Owner     common.Identity
	IsBase    bool
	Amount    uint64
}

func (m BalanceMessage) Type() MessageType { return m.Type_ }

const depositWithdrawBodyLen = 32 + 1 + 8

func parseDepositWithdraw(typ MessageType, reqID RequestID, body []byte) (BalanceMessage, error) {
	if len(body) < depositWithdrawBodyLen {
		return BalanceMessage{}, ErrMessageTooShort
	}
	m := BalanceMessage{RequestID: reqID, Type_: typ}
	copy(m.Owner[:], body[0:32])
	m.IsBase = body[32] != 0
	m.Amount = binary.BigEndian.Uint64(body[33:41])
	return m, nil
}

func parseCloseBalance(reqID RequestID, body []byte) (BalanceMessage, error) {
	if len(body) < 32 {
		return BalanceMessage{}, ErrMessageTooShort
	}
	m := BalanceMessage{RequestID: reqID, Type_: CloseBalance}
	copy(m.Owner[:], body[0:32])
	return m, nil
}

// ConsumeEventsMessage requests settlement of up to Limit queued fill
// events whose maker is in MakerBalances.
type ConsumeEventsMessage struct {
	RequestID     RequestID
	Limit         int
	MakerBalances map[common.Identity]struct{}
}

func (ConsumeEventsMessage) Type() MessageType { return ConsumeEvents }

func parseConsumeEvents(reqID RequestID, body []byte) (ConsumeEventsMessage, error) {
	if len(body) < 3 {
		return ConsumeEventsMessage{}, ErrMessageTooShort
	}
	limit := int(body[0])
	count := binary.BigEndian.Uint16(body[1:3])
	body = body[3:]
	if len(body) < int(count)*32 {
		return ConsumeEventsMessage{}, ErrMessageTooShort
	}

	makers := make(map[common.Identity]struct{}, count)
	for i := 0; i < int(count); i++ {
		var id common.Identity
		copy(id[:], body[i*32:i*32+32])
		makers[id] = struct{}{}
	}

	return ConsumeEventsMessage{RequestID: reqID, Limit: limit, MakerBalances: makers}, nil
}

// ParseMessage decodes a client frame into a concrete Message.
func ParseMessage(buf []byte) (Message, error) {
	typ, reqID, body, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	switch typ {
	case Heartbeat:
		return BalanceMessage{RequestID: reqID, Type_: Heartbeat}, nil
	case PlaceLimitOrder:
		return parsePlaceLimitOrder(reqID, body)
	case CancelOrder:
		return parseCancelOrder(reqID, body)
	case Deposit, Withdraw:
		return parseDepositWithdraw(typ, reqID, body)
	case CloseBalance:
		return parseCloseBalance(reqID, body)
	case ConsumeEvents:
		return parseConsumeEvents(reqID, body)
	default:
		return nil, ErrInvalidMessageType
	}
}

// Report is the fixed-shape response sent back for every request.
type Report struct {
	Type      ReportType
	RequestID RequestID
	ErrMsg    string
	OrderID   uint64
	Placed    bool
	Fills     []common.OrderFilled
}

const reportFixedHeaderLen = 1 + 16 + 2 + 8 + 1 + 2

// Serialize packs a Report into a frame: type, request id, error-string
// length, order id, placed flag, fill count, then the error-string bytes,
// then one fixed-width record per fill.
func (r *Report) Serialize() []byte {
	fillRecordLen := 8 + 8 + 8 + 8 + 1
	total := reportFixedHeaderLen + len(r.ErrMsg) + len(r.Fills)*fillRecordLen
	buf := make([]byte, total)

	buf[0] = byte(r.Type)
	copy(buf[1:17], r.RequestID[:])
	binary.BigEndian.PutUint16(buf[17:19], uint16(len(r.ErrMsg)))
	binary.BigEndian.PutUint64(buf[19:27], r.OrderID)
	if r.Placed {
		buf[27] = 1
	}
	binary.BigEndian.PutUint16(buf[28:30], uint16(len(r.Fills)))

	offset := reportFixedHeaderLen
	copy(buf[offset:], r.ErrMsg)
	offset += len(r.ErrMsg)

	for _, fill := range r.Fills {
		binary.BigEndian.PutUint64(buf[offset:offset+8], fill.MakerOrderID)
		binary.BigEndian.PutUint64(buf[offset+8:offset+16], fill.TakerOrderID)
		binary.BigEndian.PutUint64(buf[offset+16:offset+24], fill.Price)
		binary.BigEndian.PutUint64(buf[offset+24:offset+32], fill.Quantity)
		buf[offset+32] = byte(fill.TakerSide)
		offset += fillRecordLen
	}

	return buf
}

// errorReport builds a Report describing a failed operation.
func errorReport(reqID RequestID, err error) Report {
	return Report{Type: ErrorReport, RequestID: reqID, ErrMsg: err.Error()}
}

// placeReport builds a Report describing a successful PlaceLimitOrder.
func placeReport(reqID RequestID, result *engine.PlaceLimitOrderResult) Report {
	return Report{
		Type:      ExecutionReport,
		RequestID: reqID,
		OrderID:   result.OrderID,
		Placed:    result.Placed != nil,
		Fills:     result.Fills,
	}
}
