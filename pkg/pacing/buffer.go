// ABOUTME: Append-only byte accumulator fed by a decoder
// ABOUTME: Publishes whole appended blocks to a single paced reader
package pacing

import "sync"

// Buffer is an append-only accumulator with one writer and one reader. Bytes
// become visible only once their whole Append has completed, and bytes already
// published are never modified, so slices returned by Peek stay valid.
type Buffer struct {
	mu       sync.RWMutex
	data     []byte
	complete bool
}

// NewBuffer creates an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append copies p onto the end of the buffer. Appending after MarkComplete is
// ignored.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.complete {
		return
	}
	b.data = append(b.data, p...)
}

// MarkComplete records that the producer will append nothing more
func (b *Buffer) MarkComplete() {
	b.mu.Lock()
	b.complete = true
	b.mu.Unlock()
}

// Complete reports whether the producer has finished
func (b *Buffer) Complete() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.complete
}

// Len returns the number of bytes appended so far
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Peek returns up to maxLen bytes starting at from. The result is a read-only
// view; it is capped so appending to it cannot touch the buffer.
func (b *Buffer) Peek(from, maxLen int) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if from < 0 || from >= len(b.data) || maxLen <= 0 {
		return nil
	}
	end := from + maxLen
	if end > len(b.data) {
		end = len(b.data)
	}
	return b.data[from:end:end]
}

// Snapshot returns the appended length and completion flag atomically
func (b *Buffer) Snapshot() (length int, complete bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data), b.complete
}
