// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager lifecycle, TXT records and entry parsing
package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "bench-bob",
		Port:        9090,
		Mode:        "bob",
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	defer mgr.Stop()

	if mgr.config.Port != 9090 {
		t.Errorf("expected port 9090, got %d", mgr.config.Port)
	}
	if mgr.Servers() == nil {
		t.Error("servers channel should not be nil")
	}
}

func TestTXTRecords(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		expected []string
	}{
		{"with mode", "alice", []string{"path=/events", "mode=alice"}},
		{"without mode", "", []string{"path=/events"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(Config{ServiceName: "x", Port: 1, Mode: tt.mode})
			defer mgr.Stop()

			got := mgr.txtRecords()
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("record %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestAdvertiseInvalidPort(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "x", Port: 0})
	defer mgr.Stop()

	if err := mgr.Advertise(); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestParseEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "bench._bison-audio._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       9090,
		InfoFields: []string{"path=/events", "mode=mallory", "junk"},
	}

	info := parseEntry(entry)
	if info == nil {
		t.Fatal("expected entry to parse")
	}
	if info.Host != "192.168.1.20" {
		t.Errorf("expected host 192.168.1.20, got %s", info.Host)
	}
	if info.Mode != "mallory" {
		t.Errorf("expected mode mallory, got %s", info.Mode)
	}
	if info.Addr() != "192.168.1.20:9090" {
		t.Errorf("expected addr 192.168.1.20:9090, got %s", info.Addr())
	}
}

func TestParseEntryIPv6(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:   "bench",
		AddrV6: net.ParseIP("fe80::1"),
		Port:   9090,
	}

	info := parseEntry(entry)
	if info == nil {
		t.Fatal("expected entry to parse")
	}
	if info.Addr() != "[fe80::1]:9090" {
		t.Errorf("expected bracketed IPv6 addr, got %s", info.Addr())
	}
	if info.Path != EventsPath {
		t.Errorf("expected default path, got %s", info.Path)
	}
}

func TestParseEntryWithoutAddress(t *testing.T) {
	if info := parseEntry(&mdns.ServiceEntry{Name: "ghost", Port: 1}); info != nil {
		t.Errorf("expected nil for entry without address, got %+v", info)
	}
}

func TestStopEndsBrowse(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "x", Port: 1})
	mgr.Stop()

	select {
	case <-mgr.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after Stop")
	}
}

func TestSeenSet(t *testing.T) {
	s := newSeenSet()

	tests := []struct {
		key  string
		want bool
	}{
		{"bridge@10.0.0.2:9090", true},
		{"bridge@10.0.0.2:9090", false},
		{"bridge@10.0.0.3:9090", true},
	}

	for _, tt := range tests {
		if got := s.add(tt.key); got != tt.want {
			t.Errorf("add(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
