// ABOUTME: Bridge application orchestration
// ABOUTME: Wires link, decoder, sink, monitor and UI around one role
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Robin-Sch/2IC80/internal/config"
	"github.com/Robin-Sch/2IC80/internal/link"
	"github.com/Robin-Sch/2IC80/internal/metrics"
	"github.com/Robin-Sch/2IC80/internal/monitor"
	"github.com/Robin-Sch/2IC80/internal/protocol"
	"github.com/Robin-Sch/2IC80/internal/receive"
	"github.com/Robin-Sch/2IC80/internal/transmit"
	"github.com/Robin-Sch/2IC80/internal/ui"
	"github.com/Robin-Sch/2IC80/internal/version"
	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/Robin-Sch/2IC80/pkg/audio/decode"
	"github.com/Robin-Sch/2IC80/pkg/audio/output"
	"github.com/Robin-Sch/2IC80/pkg/marker"
	"github.com/Robin-Sch/2IC80/pkg/pacing"
)

// ErrTrackMissing is returned when a transmitter's track does not exist
var ErrTrackMissing = errors.New("track not found")

// StatusSink receives UI status updates
type StatusSink interface {
	Update(ui.StatusMsg)
}

// Config holds bridge configuration
type Config struct {
	// Settings selects the role and its parameters (required)
	Settings *config.Config

	// Link overrides opening the configured serial port
	Link link.Link

	// Sink overrides the configured receiver sink
	Sink output.Sink

	// Decoder overrides the configured decoder selection
	Decoder decode.Decoder

	// Status receives UI updates (optional)
	Status StatusSink
}

// Bridge runs one role of the audio bridge
type Bridge struct {
	config   Config
	settings *config.Config
	label    string
	metrics  *metrics.Metrics
	monitor  *monitor.Server
}

// New creates a bridge
func New(cfg Config) (*Bridge, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &Bridge{
		config:   cfg,
		settings: cfg.Settings,
		label:    strings.ToUpper(cfg.Settings.Mode),
		metrics:  metrics.NewMetrics(),
	}, nil
}

// Metrics returns the bridge's metrics
func (b *Bridge) Metrics() *metrics.Metrics {
	return b.metrics
}

// Run runs the configured role until ctx is cancelled or the link fails. Once
// ctx is cancelled any teardown error is ignored and Run returns nil.
func (b *Bridge) Run(ctx context.Context) error {
	s := b.settings

	track := ""
	if s.Transmitter() {
		path, err := b.checkTrack()
		if err != nil {
			return err
		}
		track = path
	}

	l := b.config.Link
	if l == nil {
		log.Printf("[%s] Opening serial port %s...", b.label, s.Link.Port)
		opened, err := link.OpenSerial(s.Link.Port, s.Link.BaudRate)
		if err != nil {
			return err
		}
		l = opened
	}
	defer l.Close()

	b.status(ui.StatusMsg{Mode: s.Mode, Port: s.Link.Port, Track: track, LinkUp: boolPtr(true)})

	if s.Monitor.Addr != "" {
		if err := b.startMonitor(track); err != nil {
			return err
		}
		defer b.monitor.Stop()
	}

	var err error
	if s.Transmitter() {
		err = b.runTransmitter(ctx, l, track)
	} else {
		err = b.runReceiver(ctx, l)
	}

	b.status(ui.StatusMsg{LinkUp: boolPtr(false)})

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// checkTrack resolves the track and logs its size
func (b *Bridge) checkTrack() (string, error) {
	path, err := b.settings.TrackPath()
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		log.Printf("[%s] ERROR: Audio file not found: %s", b.label, path)
		return "", fmt.Errorf("%w: %s", ErrTrackMissing, path)
	}

	log.Printf("[%s] Track: %s", b.label, path)
	log.Printf("[%s] File size: %.2f MB", b.label, float64(info.Size())/1024/1024)
	return path, nil
}

func (b *Bridge) startMonitor(track string) error {
	s := b.settings

	mon, err := monitor.NewServer(monitor.Config{
		Addr:       s.Monitor.Addr,
		Name:       s.Monitor.Name,
		Metrics:    b.metrics,
		EnableMDNS: s.Monitor.MDNS,
		Hello: protocol.Hello{
			Name:  s.Monitor.Name,
			Mode:  s.Mode,
			Port:  s.Link.Port,
			Track: track,
			DeviceInfo: protocol.DeviceInfo{
				ProductName:     version.Product,
				Manufacturer:    version.Manufacturer,
				SoftwareVersion: version.Version,
			},
			Format: protocol.AudioFormat{
				Codec:      "pcm",
				Channels:   audio.Link.Channels,
				SampleRate: audio.Link.SampleRate,
				BitDepth:   audio.Link.BitDepth,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	if err := mon.Start(); err != nil {
		return err
	}
	b.monitor = mon
	return nil
}

func (b *Bridge) runTransmitter(ctx context.Context, l link.Link, track string) error {
	s := b.settings

	dec := b.config.Decoder
	if dec == nil {
		selected, err := decode.ForPath(s.Audio.Decoder, track)
		if err != nil {
			return fmt.Errorf("no decoder for %s: %w", track, err)
		}
		dec = selected
	}
	log.Printf("[%s] Decoder: %s", b.label, dec.Name())

	tx, err := transmit.New(transmit.Config{
		Track:   track,
		Decoder: dec,
		Link:    l,
		Pacing: pacing.Config{
			BytesPerSecond: audio.Link.BytesPerSecond(),
			MaxChunkBytes:  s.Audio.ChunkSize,
			Interval:       s.Audio.TickInterval(),
		},
		StartDelay:   s.Audio.StartDelay(),
		RestartDelay: s.Audio.RestartDelay(),
		Label:        b.label,
		Metrics:      b.metrics,
		OnCycleStart: func(cycle int) {
			b.status(ui.StatusMsg{Cycle: cycle})
			b.broadcast(protocol.TypeCycleStart, protocol.CycleStart{Cycle: cycle})
		},
		OnCycleEnd: func(r transmit.CycleReport) {
			b.status(ui.StatusMsg{Progress: &ui.Progress{Bytes: r.Bytes, Seconds: r.Seconds, Total: r.Total}})
			b.broadcast(protocol.TypeCycleEnd, protocol.CycleEnd{
				Cycle:      r.Cycle,
				Bytes:      r.Bytes,
				Seconds:    r.Seconds,
				DurationMs: r.Duration.Milliseconds(),
			})
		},
		OnProgress: func(p transmit.Progress) {
			b.status(ui.StatusMsg{Progress: &ui.Progress{Bytes: p.Bytes, Seconds: p.Seconds, Total: p.Total}})
			b.broadcast(protocol.TypeProgress, protocol.Progress{
				Direction: protocol.DirectionSent,
				Cycle:     p.Cycle,
				Bytes:     p.Bytes,
				Seconds:   p.Seconds,
				Total:     p.Total,
			})
		},
		OnMarker: func(m marker.Marker) {
			b.reportMarker(protocol.DirectionReceived, m)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create transmitter: %w", err)
	}

	return tx.Run(ctx)
}

func (b *Bridge) runReceiver(ctx context.Context, l link.Link) error {
	s := b.settings

	sink := b.config.Sink
	if sink == nil {
		opened, err := output.New(s.Audio.Sink, audio.Link)
		if err != nil {
			return fmt.Errorf("failed to open sink: %w", err)
		}
		sink = opened
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Printf("[%s] Speaker close error: %v", b.label, err)
		}
		log.Printf("[%s] Speaker closed", b.label)
	}()

	rx, err := receive.New(receive.Config{
		Link:         l,
		Sink:         sink,
		ReadyTimeout: s.Audio.SinkReadyTimeout(),
		Label:        b.label,
		Metrics:      b.metrics,
		OnReady: func(bool) {
			b.status(ui.StatusMsg{SinkReady: boolPtr(true)})
		},
		OnMarker: func(m marker.Marker) {
			b.reportMarker(protocol.DirectionReceived, m)
		},
		OnProgress: func(session receive.Session) {
			b.status(ui.StatusMsg{Progress: &ui.Progress{
				Bytes:   session.Received,
				Seconds: session.Seconds(),
				Total:   session.Received,
			}})
			b.broadcast(protocol.TypeProgress, protocol.Progress{
				Direction: protocol.DirectionReceived,
				Bytes:     session.Received,
				Seconds:   session.Seconds(),
				Total:     session.Received,
			})
		},
		OnSinkError: func(err error) {
			b.status(ui.StatusMsg{Error: err.Error()})
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create receiver: %w", err)
	}

	return rx.Run(ctx)
}

func (b *Bridge) reportMarker(direction string, m marker.Marker) {
	b.status(ui.StatusMsg{Marker: m.String()})
	b.broadcast(protocol.TypeMarker, protocol.MarkerSeen{
		Direction:   direction,
		ID:          fmt.Sprintf("0x%02X", m.ID),
		Description: m.Description,
	})
}

func (b *Bridge) status(msg ui.StatusMsg) {
	if b.config.Status != nil {
		b.config.Status.Update(msg)
	}
}

func (b *Bridge) broadcast(msgType string, payload interface{}) {
	if b.monitor != nil {
		b.monitor.Broadcast(msgType, payload)
	}
}

func boolPtr(v bool) *bool {
	return &v
}
