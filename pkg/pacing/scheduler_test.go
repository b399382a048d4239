// ABOUTME: Tests for the pacing scheduler
// ABOUTME: Covers real-time release, jitter catch-up, chunk bounds and backpressure
package pacing

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
	"time"
)

// recorder collects written chunks
type recorder struct {
	chunks [][]byte
	total  int
}

func (r *recorder) write(p []byte) error {
	c := make([]byte, len(p))
	copy(c, p)
	r.chunks = append(r.chunks, c)
	r.total += len(p)
	return nil
}

func filledBuffer(n int, complete bool) *Buffer {
	buf := NewBuffer()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	buf.Append(data)
	if complete {
		buf.MarkComplete()
	}
	return buf
}

func TestExpectedBytes(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected int64
	}{
		{"zero", 0, 0},
		{"negative", -time.Second, 0},
		{"one tick", 10 * time.Millisecond, 160},
		{"one second", time.Second, 16000},
		{"sub-millisecond", 500 * time.Microsecond, 8},
		{"one hour", time.Hour, 16000 * 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedBytes(tt.elapsed, 16000); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestOneSecondOfAudio(t *testing.T) {
	start := time.Unix(1000, 0)
	buf := filledBuffer(16000, true)
	sched := NewScheduler(DefaultConfig(), buf, start)
	rec := &recorder{}

	var doneAt int
	for tick := 1; tick <= 200; tick++ {
		res, err := sched.Tick(start.Add(time.Duration(tick)*10*time.Millisecond), rec.write)
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", tick, err)
		}
		if res.Done {
			doneAt = tick
			break
		}
	}

	if len(rec.chunks) != 100 {
		t.Fatalf("expected 100 chunks, got %d", len(rec.chunks))
	}
	for i, c := range rec.chunks {
		if len(c) != 160 {
			t.Errorf("chunk %d: expected 160 bytes, got %d", i, len(c))
		}
	}
	if doneAt != 100 {
		t.Errorf("expected completion at tick 100 (~1000ms), got tick %d", doneAt)
	}
	if !sched.Done() {
		t.Error("expected scheduler to report done")
	}

	var joined []byte
	for _, c := range rec.chunks {
		joined = append(joined, c...)
	}
	if !bytes.Equal(joined, buf.Peek(0, 16000)) {
		t.Error("released bytes differ from buffered bytes")
	}
}

func TestDelayedTickCatchesUp(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewScheduler(DefaultConfig(), filledBuffer(16000, true), start)
	rec := &recorder{}

	res, err := sched.Tick(start.Add(505*time.Millisecond), rec.write)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 505ms owes 8080 bytes: 50 full chunks plus one 80-byte chunk
	if res.Bytes != 8080 || res.Released != 8080 {
		t.Errorf("expected 8080 bytes released, got %d (total %d)", res.Bytes, res.Released)
	}
	if res.Chunks != 51 {
		t.Errorf("expected 51 chunks, got %d", res.Chunks)
	}
	for i, c := range rec.chunks {
		if len(c) > 160 {
			t.Errorf("chunk %d exceeds max size: %d", i, len(c))
		}
	}
	if last := rec.chunks[len(rec.chunks)-1]; len(last) != 80 {
		t.Errorf("expected final chunk of 80 bytes, got %d", len(last))
	}
}

func TestNeverAheadOfSchedule(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := time.Unix(1000, 0)
	cfg := DefaultConfig()
	sched := NewScheduler(cfg, filledBuffer(64000, true), start)
	rec := &recorder{}

	now := start
	for !sched.Done() {
		now = now.Add(time.Duration(rng.Intn(40000)) * time.Microsecond)
		res, err := sched.Tick(now, rec.write)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := ExpectedBytes(now.Sub(start), cfg.BytesPerSecond)
		if res.Released > expected {
			t.Fatalf("released %d ahead of expected %d", res.Released, expected)
		}
		if res.Released != expected && !res.Done {
			t.Fatalf("fully buffered schedule should keep up: released %d, expected %d", res.Released, expected)
		}
	}

	for i, c := range rec.chunks {
		if len(c) > cfg.MaxChunkBytes {
			t.Fatalf("chunk %d exceeds max size: %d", i, len(c))
		}
	}
	if rec.total != 64000 {
		t.Errorf("expected 64000 bytes released, got %d", rec.total)
	}
}

func TestJitterConverges(t *testing.T) {
	tests := []struct {
		name     string
		buffered int
		final    time.Duration
	}{
		{"buffer longer than window", 16000, 600 * time.Millisecond},
		{"window longer than buffer", 4000, 600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Unix(1000, 0)
			expected := ExpectedBytes(tt.final, 16000)
			if int64(tt.buffered) < expected {
				expected = int64(tt.buffered)
			}

			regular := NewScheduler(DefaultConfig(), filledBuffer(tt.buffered, true), start)
			for at := 10 * time.Millisecond; at <= tt.final; at += 10 * time.Millisecond {
				if _, err := regular.Tick(start.Add(at), func([]byte) error { return nil }); err != nil && !errors.Is(err, ErrFinished) {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			jittery := NewScheduler(DefaultConfig(), filledBuffer(tt.buffered, true), start)
			for _, at := range []time.Duration{3 * time.Millisecond, 170 * time.Millisecond, 171 * time.Millisecond, 450 * time.Millisecond, tt.final} {
				if _, err := jittery.Tick(start.Add(at), func([]byte) error { return nil }); err != nil && !errors.Is(err, ErrFinished) {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			if regular.Released() != expected {
				t.Errorf("regular ticks: expected %d, got %d", expected, regular.Released())
			}
			if jittery.Released() != expected {
				t.Errorf("jittery ticks: expected %d, got %d", expected, jittery.Released())
			}
		})
	}
}

func TestSlowDecoderBackpressure(t *testing.T) {
	start := time.Unix(1000, 0)
	buf := NewBuffer()
	buf.Append(make([]byte, 320))
	sched := NewScheduler(DefaultConfig(), buf, start)
	rec := &recorder{}

	res, err := sched.Tick(start.Add(100*time.Millisecond), rec.write)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Released != 320 {
		t.Errorf("expected only available bytes released, got %d", res.Released)
	}
	if res.Backlog != 1600-320 {
		t.Errorf("expected backlog %d, got %d", 1600-320, res.Backlog)
	}
	if res.Done {
		t.Error("cycle must not finish while producer is open")
	}

	buf.Append(make([]byte, 4000))
	res, err = sched.Tick(start.Add(150*time.Millisecond), rec.write)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Released != 2400 {
		t.Errorf("expected catch-up to 2400, got %d", res.Released)
	}
	if res.Backlog != 0 {
		t.Errorf("expected no backlog, got %d", res.Backlog)
	}
}

func TestOpenBufferNeverDone(t *testing.T) {
	start := time.Unix(1000, 0)
	buf := filledBuffer(160, false)
	sched := NewScheduler(DefaultConfig(), buf, start)

	res, _ := sched.Tick(start.Add(time.Second), func([]byte) error { return nil })
	if res.Done {
		t.Fatal("drained but open buffer must not complete the cycle")
	}

	buf.MarkComplete()
	res, _ = sched.Tick(start.Add(time.Second+10*time.Millisecond), func([]byte) error { return nil })
	if !res.Done {
		t.Error("expected completion once producer finished")
	}
}

func TestEmptyCompleteBuffer(t *testing.T) {
	start := time.Unix(1000, 0)
	buf := NewBuffer()
	buf.MarkComplete()
	sched := NewScheduler(DefaultConfig(), buf, start)

	res, err := sched.Tick(start.Add(10*time.Millisecond), func([]byte) error {
		t.Fatal("nothing should be written")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Done {
		t.Error("expected empty complete buffer to finish immediately")
	}
}

func TestTickAfterDone(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewScheduler(DefaultConfig(), filledBuffer(160, true), start)

	if res, _ := sched.Tick(start.Add(10*time.Millisecond), func([]byte) error { return nil }); !res.Done {
		t.Fatal("expected done")
	}

	_, err := sched.Tick(start.Add(20*time.Millisecond), func([]byte) error { return nil })
	if !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished, got %v", err)
	}
}

func TestWriteErrorKeepsCursor(t *testing.T) {
	start := time.Unix(1000, 0)
	sched := NewScheduler(DefaultConfig(), filledBuffer(1600, true), start)
	errLink := errors.New("link down")

	writes := 0
	failing := func(p []byte) error {
		writes++
		if writes == 3 {
			return errLink
		}
		return nil
	}

	res, err := sched.Tick(start.Add(50*time.Millisecond), failing)
	if !errors.Is(err, errLink) {
		t.Fatalf("expected link error, got %v", err)
	}
	if res.Released != 320 || sched.Cursor() != 320 {
		t.Errorf("expected cursor at failed chunk (320), got released=%d cursor=%d", res.Released, sched.Cursor())
	}

	res, err = sched.Tick(start.Add(50*time.Millisecond), failing)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if res.Released != 800 {
		t.Errorf("expected retry to catch up to 800, got %d", res.Released)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{"default", DefaultConfig(), false},
		{"zero rate", Config{MaxChunkBytes: 160, Interval: time.Millisecond}, true},
		{"zero chunk", Config{BytesPerSecond: 16000, Interval: time.Millisecond}, true},
		{"zero interval", Config{BytesPerSecond: 16000, MaxChunkBytes: 160}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
