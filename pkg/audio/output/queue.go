// ABOUTME: Bounded PCM queue between the receive path and a playback device
// ABOUTME: Writes never block; reads block until audio arrives
package output

import (
	"io"
	"sync"
)

// Queue buffers PCM for a device that pulls at its own pace. When full, the
// oldest audio is dropped so latency stays bounded.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	max     int
	closed  bool
	dropped int64
}

// NewQueue creates a queue holding at most max bytes
func NewQueue(max int) *Queue {
	q := &Queue{max: max}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Write appends p, discarding the oldest bytes beyond capacity
func (q *Queue) Write(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, io.ErrClosedPipe
	}

	q.buf = append(q.buf, p...)
	if over := len(q.buf) - q.max; over > 0 {
		// Drop whole samples to keep 16-bit alignment
		over += over % 2
		q.buf = append(q.buf[:0], q.buf[over:]...)
		q.dropped += int64(over)
	}
	q.cond.Signal()
	return len(p), nil
}

// Read blocks until data is queued or the queue is closed
func (q *Queue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.buf) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.buf) == 0 {
		return 0, io.EOF
	}

	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	return n, nil
}

// Len returns the number of queued bytes
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Dropped returns how many bytes were discarded on overflow
func (q *Queue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Close wakes readers; queued bytes can still be read
func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
	return nil
}
