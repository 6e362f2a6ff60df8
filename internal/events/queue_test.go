package events

import (
	"testing"

	"clobengine/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(makerID uint64) FillEvent {
	return FillEvent{
		MakerOrderID: makerID,
		TakerOrderID: 99,
		Price:        1000,
		Quantity:     5,
		Timestamp:    1234,
		MakerOwner:   common.NewIdentity("maker"),
		TakerOwner:   common.NewIdentity("taker"),
		Market:       common.NewIdentity("market"),
		MakerSide:    common.Ask,
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	e := sampleEvent(1)
	buf := e.Marshal()
	require.Len(t, buf, FillEventSize)

	got, err := Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestUnmarshalTooShort(t *testing.T) {
	_, err := Unmarshal(make([]byte, FillEventSize-1))
	assert.Error(t, err)
}

func TestQueueEmptyAndFullBoundaries(t *testing.T) {
	q := NewQueue()
	assert.True(t, q.IsEmpty())
	assert.False(t, q.IsFull())

	for i := 0; i < MaxEvents-1; i++ {
		require.NoError(t, q.Push(sampleEvent(uint64(i))))
	}
	assert.True(t, q.IsFull())
	assert.Equal(t, uint64(MaxEvents-1), q.Len())

	err := q.Push(sampleEvent(9999))
	assert.ErrorIs(t, err, common.ErrEventQueueFull)
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Push(sampleEvent(1)))
	require.NoError(t, q.Push(sampleEvent(2)))
	require.NoError(t, q.Push(sampleEvent(3)))

	first, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.MakerOrderID)

	peeked, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), peeked.MakerOrderID)

	second, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.MakerOrderID)
	assert.Equal(t, uint64(1), q.Len())
}

func TestPopOnEmptyQueue(t *testing.T) {
	q := NewQueue()
	_, err := q.Pop()
	assert.ErrorIs(t, err, common.ErrEventQueueEmpty)
}

func TestQueueWrapsAroundRingBuffer(t *testing.T) {
	q := NewQueue()
	for i := 0; i < MaxEvents-1; i++ {
		require.NoError(t, q.Push(sampleEvent(uint64(i))))
	}
	for i := 0; i < MaxEvents/2; i++ {
		_, err := q.Pop()
		require.NoError(t, err)
	}
	for i := 0; i < MaxEvents/2; i++ {
		require.NoError(t, q.Push(sampleEvent(uint64(1000+i))))
	}
	assert.Equal(t, uint64(MaxEvents-1), q.Len())
}

func TestDrainUpToStopsEarlyWhenEmpty(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Push(sampleEvent(1)))
	require.NoError(t, q.Push(sampleEvent(2)))

	drained := q.DrainUpTo(10)
	assert.Len(t, drained, 2)
	assert.True(t, q.IsEmpty())
}

func TestDrainUpToRespectsLimit(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Push(sampleEvent(1)))
	require.NoError(t, q.Push(sampleEvent(2)))
	require.NoError(t, q.Push(sampleEvent(3)))

	drained := q.DrainUpTo(2)
	assert.Len(t, drained, 2)
	assert.Equal(t, uint64(1), q.Len())
}
