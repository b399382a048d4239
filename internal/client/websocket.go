// ABOUTME: WebSocket client for the bridge monitor event stream
// ABOUTME: Handles connection, hello handshake, and event delivery
package client

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Robin-Sch/2IC80/internal/discovery"
	"github.com/Robin-Sch/2IC80/internal/protocol"
	"github.com/gorilla/websocket"
)

// Config holds client configuration
type Config struct {
	ServerAddr string
	Path       string // defaults to discovery.EventsPath

	// HandshakeTimeout bounds the wait for bridge/hello
	HandshakeTimeout time.Duration
}

// Client watches one bridge monitor
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Events delivers every message after the hello; closed on disconnect
	Events chan protocol.Message

	hello     protocol.Hello
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new monitor client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = discovery.EventsPath
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config: config,
		Events: make(chan protocol.Message, 100),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the monitor and waits for its hello
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake reads the bridge/hello the monitor sends first
func (c *Client) handshake() error {
	c.conn.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", protocol.TypeHello, err)
	}
	c.conn.SetReadDeadline(time.Time{}) // Clear deadline

	msg, err := protocol.Decode(data)
	if err != nil {
		return err
	}
	if msg.Type != protocol.TypeHello {
		return fmt.Errorf("expected %s, got %s", protocol.TypeHello, msg.Type)
	}

	var hello protocol.Hello
	if err := protocol.DecodePayload(msg, &hello); err != nil {
		return err
	}

	c.mu.Lock()
	c.hello = hello
	c.mu.Unlock()

	log.Printf("Watching %s (%s on %s)", hello.Name, hello.Mode, hello.Port)
	return nil
}

// Hello returns the hello received during Connect
func (c *Client) Hello() protocol.Hello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// readMessages reads and forwards events until the connection ends
func (c *Client) readMessages() {
	defer close(c.Events)
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("Failed to parse event: %v", err)
			continue
		}

		select {
		case c.Events <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
