// ABOUTME: File and discard sinks
// ABOUTME: Headless backends that record or drop received PCM
package output

import (
	"bufio"
	"fmt"
	"os"
	"sync"
)

// File writes raw PCM to a file
type File struct {
	mu    sync.Mutex
	f     *os.File
	w     *bufio.Writer
	ready chan struct{}
	bytes int64
}

// NewFile creates (or truncates) path for raw PCM output
func NewFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &File{
		f:     f,
		w:     bufio.NewWriter(f),
		ready: closedChan(),
	}, nil
}

// Write appends PCM to the file
func (s *File) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("file sink closed")
	}
	n, err := s.w.Write(p)
	s.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("file write failed: %w", err)
	}
	return nil
}

// Ready is closed immediately
func (s *File) Ready() <-chan struct{} {
	return s.ready
}

// Bytes returns how many bytes were written
func (s *File) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Close flushes and closes the file
func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	s.f = nil
	if flushErr != nil {
		return fmt.Errorf("flush output file: %w", flushErr)
	}
	return closeErr
}

// Discard drops all audio
type Discard struct {
	ready chan struct{}
}

// NewDiscard creates a sink that drops everything
func NewDiscard() *Discard {
	return &Discard{ready: closedChan()}
}

func (d *Discard) Write(p []byte) error   { return nil }
func (d *Discard) Ready() <-chan struct{} { return d.ready }
func (d *Discard) Close() error           { return nil }
