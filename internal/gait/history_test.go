package gait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAddAndAll(t *testing.T) {
	h := NewHistory(5)
	assert.Equal(t, 0, h.Size())
	assert.Nil(t, h.All())

	for i := int64(0); i < 3; i++ {
		h.Add(Frame{TimestampMs: i})
	}

	frames := h.All()
	require.Len(t, frames, 3)
	assert.Equal(t, int64(0), frames[0].TimestampMs)
	assert.Equal(t, int64(2), frames[2].TimestampMs)
}

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(3)
	for i := int64(0); i < 7; i++ {
		h.Add(Frame{TimestampMs: i})
	}

	assert.Equal(t, 3, h.Size())
	frames := h.All()
	require.Len(t, frames, 3)
	assert.Equal(t, int64(4), frames[0].TimestampMs, "oldest surviving frame")
	assert.Equal(t, int64(6), frames[2].TimestampMs)
}

func TestHistoryElapsedMs(t *testing.T) {
	h := NewHistory(10)
	assert.Equal(t, int64(0), h.ElapsedMs())

	h.Add(Frame{TimestampMs: 1000})
	assert.Equal(t, int64(0), h.ElapsedMs(), "single frame spans no time")

	h.Add(Frame{TimestampMs: 1500})
	h.Add(Frame{TimestampMs: 2250})
	assert.Equal(t, int64(1250), h.ElapsedMs())
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(4)
	h.Add(Frame{TimestampMs: 1})
	h.Add(Frame{TimestampMs: 2})
	h.Clear()

	assert.Equal(t, 0, h.Size())
	assert.Nil(t, h.All())
	assert.Equal(t, 4, h.Capacity())
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, 100, h.Capacity())
}
