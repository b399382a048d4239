// ABOUTME: Bridge monitor event type definitions
// ABOUTME: Defines the JSON envelope and payloads streamed to watchers
package protocol

import (
	"encoding/json"
	"fmt"
)

// Message types
const (
	TypeHello      = "bridge/hello"
	TypeCycleStart = "cycle/start"
	TypeCycleEnd   = "cycle/end"
	TypeProgress   = "stream/progress"
	TypeMarker     = "marker/seen"
)

// Directions for progress and marker events
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// Message is the top-level wrapper for all monitor messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hello is sent to each watcher when it connects
type Hello struct {
	Name       string      `json:"name"`
	Mode       string      `json:"mode"`
	Port       string      `json:"port"`
	Track      string      `json:"track,omitempty"`
	DeviceInfo DeviceInfo  `json:"device_info"`
	Format     AudioFormat `json:"format"`
}

// DeviceInfo contains software identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// AudioFormat describes the link audio format
type AudioFormat struct {
	Codec      string `json:"codec"`
	Channels   int    `json:"channels"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
}

// CycleStart announces a new playback cycle
type CycleStart struct {
	Cycle int `json:"cycle"`
}

// CycleEnd reports a finished playback cycle
type CycleEnd struct {
	Cycle      int     `json:"cycle"`
	Bytes      int64   `json:"bytes"`
	Seconds    float64 `json:"seconds"`     // Audio duration
	DurationMs int64   `json:"duration_ms"` // Wall-clock duration
}

// Progress reports running byte totals
type Progress struct {
	Direction string  `json:"direction"`
	Cycle     int     `json:"cycle,omitempty"`
	Bytes     int64   `json:"bytes"`
	Seconds   float64 `json:"seconds"`
	Total     int64   `json:"total"` // Across all cycles
}

// MarkerSeen reports a firmware status marker
type MarkerSeen struct {
	Direction   string `json:"direction"`
	ID          string `json:"id"` // e.g. "0xAA"
	Description string `json:"description"`
}

// Decode parses a message envelope
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("message has no type")
	}
	return msg, nil
}

// DecodePayload converts a decoded payload into its concrete type
func DecodePayload(msg Message, v interface{}) error {
	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s payload: %w", msg.Type, err)
	}
	if err := json.Unmarshal(payloadBytes, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", msg.Type, err)
	}
	return nil
}
