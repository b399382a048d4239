// ABOUTME: Catch-up scheduler that paces buffered bytes onto the link
// ABOUTME: Computes the real-time byte budget at every tick
package pacing

import (
	"errors"
	"fmt"
	"time"

	"github.com/Robin-Sch/2IC80/pkg/audio"
)

const (
	// DefaultChunkSize is 10ms of link audio
	DefaultChunkSize = 160

	// DefaultInterval matches one chunk's audio duration
	DefaultInterval = 10 * time.Millisecond
)

// ErrFinished is returned by Tick after the cycle has completed
var ErrFinished = errors.New("pacing: cycle finished")

// Config holds the pacing parameters
type Config struct {
	// BytesPerSecond is the target release rate
	BytesPerSecond int

	// MaxChunkBytes bounds a single write
	MaxChunkBytes int

	// Interval is the tick period
	Interval time.Duration
}

// DefaultConfig returns pacing for the link format
func DefaultConfig() Config {
	return Config{
		BytesPerSecond: audio.Link.BytesPerSecond(),
		MaxChunkBytes:  DefaultChunkSize,
		Interval:       DefaultInterval,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.BytesPerSecond <= 0 {
		return fmt.Errorf("bytes per second must be positive, got %d", c.BytesPerSecond)
	}
	if c.MaxChunkBytes <= 0 {
		return fmt.Errorf("max chunk bytes must be positive, got %d", c.MaxChunkBytes)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.Interval)
	}
	return nil
}

// ExpectedBytes returns the bytes owed after elapsed at bytesPerSecond. It
// uses microsecond resolution and rounds down, so the schedule never drifts
// by more than one byte regardless of cycle length.
func ExpectedBytes(elapsed time.Duration, bytesPerSecond int) int64 {
	if elapsed <= 0 {
		return 0
	}
	return elapsed.Microseconds() * int64(bytesPerSecond) / int64(time.Second/time.Microsecond)
}

// TickResult describes what one tick released
type TickResult struct {
	Chunks   int
	Bytes    int
	Expected int64
	Released int64

	// Backlog is how far the release total trails the real-time budget
	Backlog int64

	// Done is set once the producer is complete and every byte has left
	Done bool
}

// Scheduler paces one buffer. It is owned by a single cycle and driven from a
// single goroutine.
type Scheduler struct {
	cfg      Config
	buf      *Buffer
	start    time.Time
	cursor   int
	released int64
	done     bool
}

// NewScheduler creates a scheduler whose budget starts accruing at start
func NewScheduler(cfg Config, buf *Buffer, start time.Time) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		buf:   buf,
		start: start,
	}
}

// Tick releases every chunk owed at now, in buffer order, through write. A
// failed write stops the tick and leaves the cursor at the failed chunk.
func (s *Scheduler) Tick(now time.Time, write func([]byte) error) (TickResult, error) {
	if s.done {
		return s.result(0, 0, s.released), ErrFinished
	}

	expected := ExpectedBytes(now.Sub(s.start), s.cfg.BytesPerSecond)
	chunks, sent := 0, 0

	for s.released < expected {
		owed := expected - s.released
		size := s.cfg.MaxChunkBytes
		if int64(size) > owed {
			size = int(owed)
		}

		chunk := s.buf.Peek(s.cursor, size)
		if len(chunk) == 0 {
			// Decoder is behind real time
			break
		}

		if err := write(chunk); err != nil {
			return s.result(chunks, sent, expected), fmt.Errorf("write chunk at offset %d: %w", s.cursor, err)
		}

		s.cursor += len(chunk)
		s.released += int64(len(chunk))
		chunks++
		sent += len(chunk)
	}

	length, complete := s.buf.Snapshot()
	if complete && s.cursor >= length {
		s.done = true
	}

	return s.result(chunks, sent, expected), nil
}

func (s *Scheduler) result(chunks, sent int, expected int64) TickResult {
	backlog := expected - s.released
	if backlog < 0 {
		backlog = 0
	}
	return TickResult{
		Chunks:   chunks,
		Bytes:    sent,
		Expected: expected,
		Released: s.released,
		Backlog:  backlog,
		Done:     s.done,
	}
}

// Released returns the bytes released since the cycle started
func (s *Scheduler) Released() int64 {
	return s.released
}

// Cursor returns the read offset into the buffer
func (s *Scheduler) Cursor() int {
	return s.cursor
}

// Done reports whether the cycle has completed
func (s *Scheduler) Done() bool {
	return s.done
}

// Interval returns the configured tick period
func (s *Scheduler) Interval() time.Duration {
	return s.cfg.Interval
}

// Start returns the timestamp the budget is measured from
func (s *Scheduler) Start() time.Time {
	return s.start
}
