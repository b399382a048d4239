// ABOUTME: Tests for the monitor WebSocket client
// ABOUTME: Tests handshake and event delivery against a real monitor handler
package client

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Robin-Sch/2IC80/internal/monitor"
	"github.com/Robin-Sch/2IC80/internal/protocol"
)

func newMonitor(t *testing.T) (*monitor.Server, string) {
	t.Helper()
	mon, err := monitor.NewServer(monitor.Config{
		Addr:  "127.0.0.1:0",
		Name:  "test-bridge",
		Hello: protocol.Hello{Name: "test-bridge", Mode: "bob", Port: "/dev/null"},
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ts := httptest.NewServer(mon.Handler())
	t.Cleanup(ts.Close)
	return mon, strings.TrimPrefix(ts.URL, "http://")
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{ServerAddr: "localhost:9090"})
	if client == nil {
		t.Fatal("expected client to be created")
	}
	if client.config.Path != "/events" {
		t.Errorf("expected default path /events, got %s", client.config.Path)
	}
	if client.IsConnected() {
		t.Error("expected new client to be disconnected")
	}
}

func TestConnectReadsHello(t *testing.T) {
	_, addr := newMonitor(t)

	client := NewClient(Config{ServerAddr: addr})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	hello := client.Hello()
	if hello.Name != "test-bridge" || hello.Mode != "bob" {
		t.Errorf("unexpected hello: %+v", hello)
	}
	if !client.IsConnected() {
		t.Error("expected client to be connected")
	}
}

func TestEventsDelivered(t *testing.T) {
	mon, addr := newMonitor(t)

	client := NewClient(Config{ServerAddr: addr})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	mon.Broadcast(protocol.TypeMarker, protocol.MarkerSeen{Direction: protocol.DirectionReceived, ID: "0xEE", Description: "ISO connected"})

	select {
	case msg := <-client.Events:
		if msg.Type != protocol.TypeMarker {
			t.Fatalf("expected %s, got %s", protocol.TypeMarker, msg.Type)
		}
		var seen protocol.MarkerSeen
		if err := protocol.DecodePayload(msg, &seen); err != nil {
			t.Fatalf("DecodePayload() error = %v", err)
		}
		if seen.ID != "0xEE" {
			t.Errorf("expected id 0xEE, got %s", seen.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestConnectFailure(t *testing.T) {
	client := NewClient(Config{ServerAddr: "127.0.0.1:1", HandshakeTimeout: 100 * time.Millisecond})
	if err := client.Connect(); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestEventsClosedOnDisconnect(t *testing.T) {
	_, addr := newMonitor(t)

	client := NewClient(Config{ServerAddr: addr})
	if err := client.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	select {
	case _, ok := <-client.Events:
		if ok {
			t.Error("expected events channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}
