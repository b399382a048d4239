// ABOUTME: Duplex byte link between a transmitter and a receiver
// ABOUTME: Wraps a read/write stream with a reader goroutine and chunk channel
package link

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
)

// ReadSize is the largest chunk delivered from a single read
const ReadSize = 4096

// ErrClosed is returned by Write after the link is closed
var ErrClosed = errors.New("link closed")

// Link is a duplex byte stream. Inbound data arrives on Chunks; the channel
// is closed when the link closes or fails.
type Link interface {
	Write(p []byte) error
	Chunks() <-chan []byte
	Err() error
	Close() error
}

// Conn is a Link over any io.ReadWriteCloser
type Conn struct {
	name string
	rwc  io.ReadWriteCloser

	chunks chan []byte
	done   chan struct{}

	writeMu sync.Mutex

	mu     sync.Mutex
	err    error
	closed bool
}

// Wrap starts reading rwc and returns the link
func Wrap(rwc io.ReadWriteCloser, name string) *Conn {
	c := &Conn{
		name:   name,
		rwc:    rwc,
		chunks: make(chan []byte, 256),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop copies each read into its own chunk
func (c *Conn) readLoop() {
	defer close(c.chunks)

	buf := make([]byte, ReadSize)
	for {
		n, err := c.rwc.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			select {
			case c.chunks <- chunk:
			case <-c.done:
				return
			}
		}
		if err != nil {
			c.fail(err)
			return
		}
	}
}

// fail records a read error unless the link was closed locally
func (c *Conn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		log.Printf("Link %s closed by peer", c.name)
		c.err = ErrClosed
		return
	}
	log.Printf("Link %s error: %v", c.name, err)
	c.err = fmt.Errorf("link %s read: %w", c.name, err)
}

// Write sends p in full
func (c *Conn) Write(p []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for len(p) > 0 {
		n, err := c.rwc.Write(p)
		if err != nil {
			return fmt.Errorf("link %s write: %w", c.name, err)
		}
		p = p[n:]
	}
	return nil
}

// Chunks returns inbound data
func (c *Conn) Chunks() <-chan []byte {
	return c.chunks
}

// Err returns the error that ended the read loop, if any
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Name returns the link's label
func (c *Conn) Name() string {
	return c.name
}

// Close closes the underlying stream
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	err := c.rwc.Close()
	log.Printf("Link %s closed", c.name)
	if err != nil {
		return fmt.Errorf("close link %s: %w", c.name, err)
	}
	return nil
}

// Pipe returns two connected in-memory links
func Pipe() (*Conn, *Conn) {
	a, b := net.Pipe()
	return Wrap(a, "pipe-a"), Wrap(b, "pipe-b")
}
