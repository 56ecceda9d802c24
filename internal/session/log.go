package session

import "sync"

// Log is a bounded ring of recent results shared by the transport layer
// (producer) and the chart handlers (consumers). Unlike the engines it is
// crossed by multiple goroutines, so it carries its own lock.
type Log struct {
	mu       sync.Mutex
	results  []Result
	capacity int
	head     int
	size     int
}

// NewLog creates a result log with the given capacity.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = 500
	}
	return &Log{
		results:  make([]Result, capacity),
		capacity: capacity,
	}
}

// Append records a result, evicting the oldest at capacity.
func (l *Log) Append(r Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[l.head] = r
	l.head = (l.head + 1) % l.capacity
	if l.size < l.capacity {
		l.size++
	}
}

// Snapshot returns the logged results from oldest to newest.
func (l *Log) Snapshot() []Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.size == 0 {
		return nil
	}
	out := make([]Result, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.results[(l.head-l.size+i+l.capacity)%l.capacity]
	}
	return out
}

// Len returns the number of logged results.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
