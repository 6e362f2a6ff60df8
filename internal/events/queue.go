// Package events implements the fixed-capacity fill-event ring buffer the
// matching engine appends to on every match, and the consumer side that
// drains it for settlement.
package events

import (
	"encoding/binary"

	"clobengine/internal/common"
)

// MaxEvents is the ring buffer's fixed capacity; one slot is always left
// empty so head==tail is unambiguously "empty" rather than ambiguous with
// "full".
const MaxEvents = 256

// FillEventSize is the encoded byte width of one FillEvent: two order ids,
// price, quantity and timestamp (8 bytes each), three 32-byte identities,
// a one-byte side tag, and 7 bytes of explicit padding so the record is
// 144 bytes, a multiple of 8.
const FillEventSize = 8 + 8 + 8 + 8 + 8 + 32 + 32 + 32 + 1 + 7

// FillEvent is one resting order absorbing part of an incoming order's
// quantity, recorded for later settlement. Field order matches the wire
// layout Marshal/Unmarshal produce.
type FillEvent struct {
	MakerOrderID uint64
	TakerOrderID uint64
	Price        uint64
	Quantity     uint64
	Timestamp    int64
	MakerOwner   common.Identity
	TakerOwner   common.Identity
	Market       common.Identity
	MakerSide    common.Side
}

// Marshal encodes e into a fixed FillEventSize-byte big-endian buffer.
func (e FillEvent) Marshal() []byte {
	buf := make([]byte, FillEventSize)
	binary.BigEndian.PutUint64(buf[0:8], e.MakerOrderID)
	binary.BigEndian.PutUint64(buf[8:16], e.TakerOrderID)
	binary.BigEndian.PutUint64(buf[16:24], e.Price)
	binary.BigEndian.PutUint64(buf[24:32], e.Quantity)
	binary.BigEndian.PutUint64(buf[32:40], uint64(e.Timestamp))
	copy(buf[40:72], e.MakerOwner[:])
	copy(buf[72:104], e.TakerOwner[:])
	copy(buf[104:136], e.Market[:])
	buf[136] = byte(e.MakerSide)
	// buf[137:144] left zeroed: explicit padding, not reused.
	return buf
}

// Unmarshal decodes a FillEventSize-byte buffer produced by Marshal.
func Unmarshal(buf []byte) (FillEvent, error) {
	if len(buf) < FillEventSize {
		return FillEvent{}, common.ErrEventQueueEmpty
	}
	var e FillEvent
	e.MakerOrderID = binary.BigEndian.Uint64(buf[0:8])
	e.TakerOrderID = binary.BigEndian.Uint64(buf[8:16])
	e.Price = binary.BigEndian.Uint64(buf[16:24])
	e.Quantity = binary.BigEndian.Uint64(buf[24:32])
	e.Timestamp = int64(binary.BigEndian.Uint64(buf[32:40]))
	copy(e.MakerOwner[:], buf[40:72])
	copy(e.TakerOwner[:], buf[72:104])
	copy(e.Market[:], buf[104:136])
	e.MakerSide = common.Side(buf[136])
	return e, nil
}

// Queue is a fixed-capacity ring buffer of FillEvents. Its usable capacity
// is MaxEvents-1: the slot at tail is always left empty so is_empty can be
// defined as head==tail without an extra counter.
type Queue struct {
	head, tail uint64
	events     [MaxEvents]FillEvent
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// IsEmpty reports whether the queue holds no events.
func (q *Queue) IsEmpty() bool {
	return q.head == q.tail
}

// IsFull reports whether the queue is at its usable capacity.
func (q *Queue) IsFull() bool {
	return (q.tail+1)%MaxEvents == q.head
}

// Len returns the number of events currently queued.
func (q *Queue) Len() uint64 {
	if q.tail >= q.head {
		return q.tail - q.head
	}
	return MaxEvents - q.head + q.tail
}

// Push appends event to the tail, failing with ErrEventQueueFull if the
// queue has no room.
func (q *Queue) Push(event FillEvent) error {
	if q.IsFull() {
		return common.ErrEventQueueFull
	}
	q.events[q.tail] = event
	q.tail = (q.tail + 1) % MaxEvents
	return nil
}

// Pop removes and returns the event at the head, failing with
// ErrEventQueueEmpty if the queue holds nothing.
func (q *Queue) Pop() (FillEvent, error) {
	if q.IsEmpty() {
		return FillEvent{}, common.ErrEventQueueEmpty
	}
	event := q.events[q.head]
	q.head = (q.head + 1) % MaxEvents
	return event, nil
}

// Peek returns the event at the head without removing it.
func (q *Queue) Peek() (FillEvent, error) {
	if q.IsEmpty() {
		return FillEvent{}, common.ErrEventQueueEmpty
	}
	return q.events[q.head], nil
}

// DrainUpTo pops up to limit events in FIFO order, stopping early if the
// queue empties. It never returns ErrEventQueueEmpty: an empty queue just
// yields a shorter (possibly zero-length) slice.
func (q *Queue) DrainUpTo(limit uint64) []FillEvent {
	drained := make([]FillEvent, 0, limit)
	for uint64(len(drained)) < limit && !q.IsEmpty() {
		event, _ := q.Pop()
		drained = append(drained, event)
	}
	return drained
}
