// ABOUTME: Bridge configuration structures and loading
// ABOUTME: Parses YAML onto defaults and validates each section
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Modes
const (
	ModeAlice   = "alice"
	ModeMallory = "mallory"
	ModeBob     = "bob"
)

// Config represents the complete bridge configuration
type Config struct {
	Mode    string            `yaml:"mode"`
	Link    LinkConfig        `yaml:"link"`
	Audio   AudioConfig       `yaml:"audio"`
	Assets  string            `yaml:"assets_dir"`
	Tracks  map[string]string `yaml:"tracks"`
	Monitor MonitorConfig     `yaml:"monitor"`
	Logging LoggingConfig     `yaml:"logging"`
}

// LinkConfig contains serial link settings
type LinkConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// AudioConfig contains pacing and device parameters
type AudioConfig struct {
	ChunkSize          int    `yaml:"chunk_size"`            // bytes
	TickIntervalMs     int    `yaml:"tick_interval_ms"`      // milliseconds
	StartDelayMs       int    `yaml:"start_delay_ms"`        // milliseconds
	SinkReadyTimeoutMs int    `yaml:"sink_ready_timeout_ms"` // milliseconds
	RestartDelayMs     int    `yaml:"restart_delay_ms"`      // milliseconds
	Decoder            string `yaml:"decoder"`
	Sink               string `yaml:"sink"`
}

// MonitorConfig contains the optional HTTP monitor settings
type MonitorConfig struct {
	Addr string `yaml:"addr"`
	MDNS bool   `yaml:"mdns"`
	Name string `yaml:"name"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	File string `yaml:"file"`
	TUI  bool   `yaml:"tui"`
}

// Default returns the settings the bridge firmware expects
func Default() *Config {
	return &Config{
		Mode: ModeAlice,
		Link: LinkConfig{
			BaudRate: 1000000,
		},
		Audio: AudioConfig{
			ChunkSize:          160,
			TickIntervalMs:     10,
			StartDelayMs:       2000,
			SinkReadyTimeoutMs: 1000,
			RestartDelayMs:     1000,
			Decoder:            "auto",
			Sink:               "oto",
		},
		Assets: "assets",
		Tracks: map[string]string{
			ModeAlice:   "default.mp3",
			ModeMallory: "injection.mp3",
		},
		Monitor: MonitorConfig{
			MDNS: true,
			Name: "bison-audio",
		},
		Logging: LoggingConfig{
			File: "bison-audio.log",
			TUI:  true,
		},
	}
}

// Load reads path and applies it over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAlice, ModeMallory, ModeBob:
	default:
		return fmt.Errorf("mode must be one of [alice, mallory, bob], got '%s'", c.Mode)
	}

	if err := c.Link.Validate(); err != nil {
		return fmt.Errorf("link config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	return nil
}

// Transmitter reports whether the mode sends audio
func (c *Config) Transmitter() bool {
	return c.Mode == ModeAlice || c.Mode == ModeMallory
}

// TrackPath resolves the track for the current mode
func (c *Config) TrackPath() (string, error) {
	name, ok := c.Tracks[c.Mode]
	if !ok || name == "" {
		return "", fmt.Errorf("no track configured for mode %s", c.Mode)
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(c.Assets, name), nil
}

// SetTrack overrides the track played in mode
func (c *Config) SetTrack(mode, path string) {
	if c.Tracks == nil {
		c.Tracks = make(map[string]string)
	}
	c.Tracks[mode] = path
}

// Validate validates link configuration
func (l *LinkConfig) Validate() error {
	if l.BaudRate < 1 {
		return fmt.Errorf("baud_rate must be positive, got %d", l.BaudRate)
	}
	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.ChunkSize < 2 || a.ChunkSize%2 != 0 {
		return fmt.Errorf("chunk_size must be a positive even number of bytes, got %d", a.ChunkSize)
	}

	if a.TickIntervalMs < 1 {
		return fmt.Errorf("tick_interval_ms must be at least 1, got %d", a.TickIntervalMs)
	}

	if a.StartDelayMs < 0 {
		return fmt.Errorf("start_delay_ms cannot be negative, got %d", a.StartDelayMs)
	}

	if a.SinkReadyTimeoutMs < 1 {
		return fmt.Errorf("sink_ready_timeout_ms must be at least 1, got %d", a.SinkReadyTimeoutMs)
	}

	if a.RestartDelayMs < 0 {
		return fmt.Errorf("restart_delay_ms cannot be negative, got %d", a.RestartDelayMs)
	}

	validDecoders := map[string]bool{"auto": true, "ffmpeg": true, "native": true}
	if !validDecoders[a.Decoder] {
		return fmt.Errorf("decoder must be one of [auto, ffmpeg, native], got '%s'", a.Decoder)
	}

	if a.Sink == "" {
		return fmt.Errorf("sink cannot be empty")
	}

	return nil
}

// Validate validates monitor configuration
func (m *MonitorConfig) Validate() error {
	if m.Addr != "" && m.Name == "" {
		return fmt.Errorf("name cannot be empty when the monitor is enabled")
	}
	return nil
}

// TickInterval returns the pacing interval as a time.Duration
func (a *AudioConfig) TickInterval() time.Duration {
	return time.Duration(a.TickIntervalMs) * time.Millisecond
}

// StartDelay returns the post-open wait as a time.Duration
func (a *AudioConfig) StartDelay() time.Duration {
	return time.Duration(a.StartDelayMs) * time.Millisecond
}

// SinkReadyTimeout returns the sink readiness fallback as a time.Duration
func (a *AudioConfig) SinkReadyTimeout() time.Duration {
	return time.Duration(a.SinkReadyTimeoutMs) * time.Millisecond
}

// RestartDelay returns the empty-cycle backoff as a time.Duration
func (a *AudioConfig) RestartDelay() time.Duration {
	return time.Duration(a.RestartDelayMs) * time.Millisecond
}
