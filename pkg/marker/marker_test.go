// ABOUTME: Tests for marker tables and classification
// ABOUTME: Covers short chunks, unknown ids and payload stripping
package marker

import (
	"bytes"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		chunk       []byte
		expectOK    bool
		expectID    byte
		expectBytes []byte
	}{
		{"empty", []byte{}, false, 0, []byte{}},
		{"one byte", []byte{0xAA}, false, 0, []byte{0xAA}},
		{"three repeated", []byte{0xAA, 0xAA, 0xAA}, false, 0, []byte{0xAA, 0xAA, 0xAA}},
		{"scan start with audio", []byte{0xAA, 0xAA, 0xAA, 0xAA, 0x01, 0x02}, true, 0xAA, []byte{0x01, 0x02}},
		{"marker only", []byte{0xEE, 0xEE, 0xEE, 0xEE}, true, 0xEE, []byte{}},
		{"broken run", []byte{0xAA, 0xAA, 0xAB, 0xAA, 0x01}, false, 0, []byte{0xAA, 0xAA, 0xAB, 0xAA, 0x01}},
		{"unknown id", []byte{0x10, 0x10, 0x10, 0x10, 0x01}, false, 0, []byte{0x10, 0x10, 0x10, 0x10, 0x01}},
		{"transmitter id on receiver table", []byte{0xA0, 0xA0, 0xA0, 0xA0}, false, 0, []byte{0xA0, 0xA0, 0xA0, 0xA0}},
		{"marker not at start", []byte{0x01, 0xAA, 0xAA, 0xAA, 0xAA}, false, 0, []byte{0x01, 0xAA, 0xAA, 0xAA, 0xAA}},
		{"only first run stripped", []byte{0xBB, 0xBB, 0xBB, 0xBB, 0xBB, 0xBB}, true, 0xBB, []byte{0xBB, 0xBB}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, payload, ok := ReceiverTable.Classify(tt.chunk)

			if ok != tt.expectOK {
				t.Fatalf("expected ok=%v, got %v", tt.expectOK, ok)
			}
			if ok && m.ID != tt.expectID {
				t.Errorf("expected id 0x%02X, got 0x%02X", tt.expectID, m.ID)
			}
			if ok && m.Description != ReceiverTable[tt.expectID] {
				t.Errorf("expected description %q, got %q", ReceiverTable[tt.expectID], m.Description)
			}
			if !bytes.Equal(payload, tt.expectBytes) {
				t.Errorf("expected payload %v, got %v", tt.expectBytes, payload)
			}
		})
	}
}

func TestShortChunksNeverClassified(t *testing.T) {
	table := Table{}
	for id := 0; id < 256; id++ {
		table[byte(id)] = "any"
	}

	for n := 0; n < Width; n++ {
		for id := 0; id < 256; id++ {
			chunk := bytes.Repeat([]byte{byte(id)}, n)
			_, payload, ok := table.Classify(chunk)
			if ok {
				t.Fatalf("chunk of length %d classified as marker", n)
			}
			if !bytes.Equal(payload, chunk) {
				t.Fatalf("chunk of length %d was modified", n)
			}
		}
	}
}

func TestEveryKnownIDStripped(t *testing.T) {
	for _, table := range []Table{ReceiverTable, TransmitterTable} {
		for _, id := range table.IDs() {
			chunk := Encode(id, []byte{0x01, 0x02, 0x03})
			m, payload, ok := table.Classify(chunk)
			if !ok || m.ID != id {
				t.Errorf("id 0x%02X: expected classification", id)
			}
			if !bytes.Equal(payload, []byte{0x01, 0x02, 0x03}) {
				t.Errorf("id 0x%02X: unexpected payload %v", id, payload)
			}
		}
	}
}

func TestTablesDisjoint(t *testing.T) {
	if !ReceiverTable.Disjoint(TransmitterTable) {
		t.Error("receiver and transmitter tables must not share ids")
	}
	if ReceiverTable.Disjoint(Table{0xAA: "dup"}) {
		t.Error("expected overlap to be detected")
	}
}

func TestIDsSorted(t *testing.T) {
	ids := TransmitterTable.IDs()
	if len(ids) != 7 {
		t.Fatalf("expected 7 ids, got %d", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not ascending: %v", ids)
		}
	}
}

func TestEncode(t *testing.T) {
	got := Encode(0xCC, []byte{0x05})
	expected := []byte{0xCC, 0xCC, 0xCC, 0xCC, 0x05}
	if !bytes.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestMarkerString(t *testing.T) {
	m := Marker{ID: 0xAA, Description: "scan start"}
	if got := m.String(); got != "0xAA scan start" {
		t.Errorf("unexpected string %q", got)
	}
}
