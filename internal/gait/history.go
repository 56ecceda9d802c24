// Package gait derives joint angles and locomotion statistics from a
// bounded sliding window of keypoint frames.
package gait

import "github.com/stride-data/gait.report/internal/pose"

// Frame is one buffered observation: a keypoint set with its caller
// supplied timestamp in milliseconds.
type Frame struct {
	Keypoints   pose.Keypoints
	TimestampMs int64
}

// History is a bounded ring buffer of frames. It is the only state the
// metrics engine holds and is exactly reproducible from the ordered
// append sequence. Oldest entries are evicted as new ones are appended.
type History struct {
	frames   []Frame
	capacity int
	head     int // Next write position
	size     int
}

// NewHistory creates a frame history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 100 // Default
	}
	return &History{
		frames:   make([]Frame, capacity),
		capacity: capacity,
	}
}

// Add appends a frame, overwriting the oldest if at capacity.
func (h *History) Add(f Frame) {
	h.frames[h.head] = f
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Size returns the current number of buffered frames.
func (h *History) Size() int { return h.size }

// Capacity returns the maximum number of frames that can be stored.
func (h *History) Capacity() int { return h.capacity }

// Clear removes all frames.
func (h *History) Clear() {
	for i := range h.frames {
		h.frames[i] = Frame{}
	}
	h.head = 0
	h.size = 0
}

// All returns the buffered frames from oldest to newest.
func (h *History) All() []Frame {
	if h.size == 0 {
		return nil
	}
	out := make([]Frame, h.size)
	for i := 0; i < h.size; i++ {
		idx := (h.head - h.size + i + h.capacity) % h.capacity
		out[i] = h.frames[idx]
	}
	return out
}

// ElapsedMs returns the timestamp span between the oldest and newest
// buffered frames. Returns 0 with fewer than 2 frames.
func (h *History) ElapsedMs() int64 {
	if h.size < 2 {
		return 0
	}
	newest := h.frames[(h.head-1+h.capacity)%h.capacity]
	oldest := h.frames[(h.head-h.size+h.capacity)%h.capacity]
	return newest.TimestampMs - oldest.TimestampMs
}
