// ABOUTME: Marker tables and stateless classification
// ABOUTME: Maps sentinel byte ids to firmware status descriptions
package marker

import (
	"bytes"
	"fmt"
	"sort"
)

// Width is the number of repeated bytes that make up a marker
const Width = 4

// Table maps a marker id to a human-readable description
type Table map[byte]string

// ReceiverTable holds the markers emitted by the receiving firmware
var ReceiverTable = Table{
	0xAA: "Firmware: Starting scan for Alice...",
	0xBB: "Firmware: Found Alice!",
	0xCC: "Firmware: PA Sync established",
	0xDD: "Firmware: BIG Info received",
	0xEE: "Firmware: ISO connected - audio starting!",
}

// TransmitterTable holds the markers emitted by the injecting firmware
var TransmitterTable = Table{
	0xA0: "Firmware: Starting scan...",
	0xA1: "Firmware: Found Alice!",
	0xA2: "Firmware: PA Sync established",
	0xA3: "Firmware: BIG Info received",
	0xA4: "Firmware: Attack ACTIVE!",
	0xA5: "Firmware: Audio buffer EMPTY (no UART data!)",
	0xA6: "Firmware: Audio data RECEIVED from UART!",
}

// Marker is a recognized firmware status event
type Marker struct {
	ID          byte
	Description string
}

func (m Marker) String() string {
	return fmt.Sprintf("0x%02X %s", m.ID, m.Description)
}

// IDs returns the table's ids in ascending order
func (t Table) IDs() []byte {
	ids := make([]byte, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Disjoint reports whether no id appears in both tables
func (t Table) Disjoint(other Table) bool {
	for id := range t {
		if _, ok := other[id]; ok {
			return false
		}
	}
	return true
}

// Classify inspects the first Width bytes of chunk. When they are one repeated
// id present in the table it returns the marker and the chunk with those bytes
// removed; otherwise it returns ok=false and the chunk unchanged.
func (t Table) Classify(chunk []byte) (m Marker, payload []byte, ok bool) {
	if len(chunk) < Width {
		return Marker{}, chunk, false
	}

	id := chunk[0]
	desc, known := t[id]
	if !known {
		return Marker{}, chunk, false
	}
	for i := 1; i < Width; i++ {
		if chunk[i] != id {
			return Marker{}, chunk, false
		}
	}

	return Marker{ID: id, Description: desc}, chunk[Width:], true
}

// Encode builds a chunk that starts with marker id followed by payload
func Encode(id byte, payload []byte) []byte {
	out := make([]byte, 0, Width+len(payload))
	out = append(out, bytes.Repeat([]byte{id}, Width)...)
	return append(out, payload...)
}
