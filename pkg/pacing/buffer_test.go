// ABOUTME: Tests for the decode buffer
// ABOUTME: Verifies append copying, completion and concurrent reads
package pacing

import (
	"bytes"
	"sync"
	"testing"
)

func TestBufferAppendCopies(t *testing.T) {
	buf := NewBuffer()
	src := []byte{1, 2, 3}
	buf.Append(src)
	src[0] = 9

	if got := buf.Peek(0, 3); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("expected buffer to own its bytes, got %v", got)
	}
}

func TestBufferPeek(t *testing.T) {
	buf := NewBuffer()
	buf.Append([]byte{0, 1, 2, 3, 4})
	buf.Append([]byte{5, 6})

	tests := []struct {
		name     string
		from     int
		maxLen   int
		expected []byte
	}{
		{"start", 0, 3, []byte{0, 1, 2}},
		{"across appends", 4, 3, []byte{4, 5, 6}},
		{"clipped at end", 5, 10, []byte{5, 6}},
		{"at end", 7, 3, nil},
		{"past end", 20, 3, nil},
		{"negative", -1, 3, nil},
		{"zero length", 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buf.Peek(tt.from, tt.maxLen)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBufferPeekIsCapped(t *testing.T) {
	buf := NewBuffer()
	buf.Append([]byte{1, 2, 3, 4})

	view := buf.Peek(0, 2)
	_ = append(view, 0xFF)

	if got := buf.Peek(2, 1); got[0] != 3 {
		t.Errorf("appending to a peeked view modified the buffer: %v", got)
	}
}

func TestBufferComplete(t *testing.T) {
	buf := NewBuffer()
	buf.Append([]byte{1, 2})

	if buf.Complete() {
		t.Error("expected buffer to be open")
	}

	buf.MarkComplete()
	buf.Append([]byte{3})

	length, complete := buf.Snapshot()
	if !complete {
		t.Error("expected buffer to be complete")
	}
	if length != 2 {
		t.Errorf("expected appends after completion to be ignored, got length %d", length)
	}
}

func TestBufferConcurrentAppendAndRead(t *testing.T) {
	buf := NewBuffer()
	block := bytes.Repeat([]byte{0x5A}, 160)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			buf.Append(block)
		}
		buf.MarkComplete()
	}()

	cursor := 0
	for {
		length, complete := buf.Snapshot()
		if length%len(block) != 0 {
			t.Fatalf("observed partial block: length %d", length)
		}
		if chunk := buf.Peek(cursor, 64); len(chunk) > 0 {
			for _, b := range chunk {
				if b != 0x5A {
					t.Fatalf("read unexpected byte 0x%02X at %d", b, cursor)
				}
			}
			cursor += len(chunk)
			continue
		}
		if complete && cursor >= length {
			break
		}
	}
	wg.Wait()

	if cursor != 500*len(block) {
		t.Errorf("expected to read %d bytes, got %d", 500*len(block), cursor)
	}
}
