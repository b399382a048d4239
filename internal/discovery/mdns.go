// ABOUTME: mDNS service discovery for the bridge monitor
// ABOUTME: Handles both advertisement (bridge) and browsing (watch tool)
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service a running bridge advertises
const ServiceType = "_bison-audio._tcp"

// EventsPath is where the monitor serves its event stream
const EventsPath = "/events"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Mode        string // Advertised in TXT so watchers can tell roles apart
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServiceInfo
}

// ServiceInfo describes a discovered bridge
type ServiceInfo struct {
	Name string
	Host string
	Port int
	Mode string
	Path string
}

// Addr returns host:port for dialing
func (s *ServiceInfo) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServiceInfo, 10),
	}
}

// txtRecords returns the TXT fields advertised with the service
func (m *Manager) txtRecords() []string {
	txt := []string{"path=" + EventsPath}
	if m.config.Mode != "" {
		txt = append(txt, "mode="+m.config.Mode)
	}
	return txt
}

// Advertise advertises this bridge via mDNS
func (m *Manager) Advertise() error {
	if m.config.Port < 1 || m.config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", m.config.Port)
	}

	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for bridges until Stop is called
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop queries repeatedly and reports each bridge address once
func (m *Manager) browseLoop() {
	seen := newSeenSet()

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				info := parseEntry(entry)
				if info == nil || !seen.add(info.Name+"@"+info.Addr()) {
					continue
				}

				log.Printf("Discovered bridge: %s at %s (mode: %s)", info.Name, info.Addr(), info.Mode)

				select {
				case m.servers <- info:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: 3 * time.Second,
			Entries: entries,
		}

		if err := mdns.Query(params); err != nil {
			log.Printf("mDNS query failed: %v", err)
		}
		close(entries)
	}
}

// parseEntry converts an mDNS answer, skipping entries without an address
func parseEntry(entry *mdns.ServiceEntry) *ServiceInfo {
	info := &ServiceInfo{
		Name: entry.Name,
		Port: entry.Port,
		Path: EventsPath,
	}

	switch {
	case entry.AddrV4 != nil:
		info.Host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		info.Host = entry.AddrV6.String()
	default:
		return nil
	}

	for _, field := range entry.InfoFields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "mode":
			info.Mode = value
		case "path":
			info.Path = value
		}
	}

	return info
}

// seenSet remembers reported bridges across query rounds
type seenSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{keys: make(map[string]struct{})}
}

// add reports whether key was new
func (s *seenSet) add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Servers returns the channel of discovered bridges
func (m *Manager) Servers() <-chan *ServiceInfo {
	return m.servers
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
