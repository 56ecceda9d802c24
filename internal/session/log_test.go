package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendAndSnapshot(t *testing.T) {
	l := NewLog(4)
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Snapshot())

	for i := int64(0); i < 3; i++ {
		l.Append(Result{TimestampMs: i})
	}

	snap := l.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, int64(0), snap[0].TimestampMs)
	assert.Equal(t, int64(2), snap[2].TimestampMs)
}

func TestLogEviction(t *testing.T) {
	l := NewLog(3)
	for i := int64(0); i < 10; i++ {
		l.Append(Result{TimestampMs: i})
	}

	snap := l.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, int64(7), snap[0].TimestampMs)
	assert.Equal(t, int64(9), snap[2].TimestampMs)
}

func TestLogDefaultCapacity(t *testing.T) {
	l := NewLog(0)
	for i := int64(0); i < 600; i++ {
		l.Append(Result{TimestampMs: i})
	}
	assert.Equal(t, 500, l.Len())
}

func TestLogConcurrentAppend(t *testing.T) {
	l := NewLog(100)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Append(Result{})
				l.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, l.Len())
}
