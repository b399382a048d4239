// ABOUTME: Tests for the streaming resampler
// ABOUTME: Verifies ratios, chunk continuity and passthrough
package resample

import (
	"math"
	"testing"
)

func TestPassthrough(t *testing.T) {
	r := New(8000, 8000)
	in := []int16{1, 2, 3, 4}
	out := r.Resample(nil, in)

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: expected %d, got %d", i, in[i], out[i])
		}
	}
}

func TestDownsampleLength(t *testing.T) {
	tests := []struct {
		name       string
		inputRate  int
		outputRate int
	}{
		{"48k to 8k", 48000, 8000},
		{"44.1k to 8k", 44100, 8000},
		{"16k to 8k", 16000, 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.inputRate, tt.outputRate)
			in := make([]int16, tt.inputRate) // one second

			out := r.Resample(nil, in)

			// Linear interpolation needs a sample after the read position, so
			// the tail of a chunk is carried into the next call.
			if diff := tt.outputRate - len(out); diff < 0 || diff > 1 {
				t.Errorf("expected ~%d samples, got %d", tt.outputRate, len(out))
			}
		})
	}
}

func TestChunkedMatchesWhole(t *testing.T) {
	in := make([]int16, 4800)
	for i := range in {
		in[i] = int16(10000 * math.Sin(2*math.Pi*440*float64(i)/48000))
	}

	whole := New(48000, 8000).Resample(nil, in)

	r := New(48000, 8000)
	var chunked []int16
	for off := 0; off < len(in); off += 333 {
		end := off + 333
		if end > len(in) {
			end = len(in)
		}
		chunked = r.Resample(chunked, in[off:end])
	}

	if len(chunked) != len(whole) {
		t.Fatalf("expected %d samples, got %d", len(whole), len(chunked))
	}
	for i := range whole {
		if d := int(whole[i]) - int(chunked[i]); d > 1 || d < -1 {
			t.Fatalf("sample %d differs: whole=%d chunked=%d", i, whole[i], chunked[i])
		}
	}
}

func TestInterpolation(t *testing.T) {
	r := New(16000, 8000)
	out := r.Resample(nil, []int16{0, 100, 200, 300, 400})

	expected := []int16{0, 200}
	if len(out) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(out))
	}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], out[i])
		}
	}

	// Next chunk continues from position 4 (the carried 400)
	out = r.Resample(nil, []int16{500, 600})
	if len(out) != 1 || out[0] != 400 {
		t.Errorf("expected [400], got %v", out)
	}
}

func TestReset(t *testing.T) {
	r := New(16000, 8000)
	r.Resample(nil, []int16{1, 2, 3})
	r.Reset()

	if r.primed || r.position != 0 {
		t.Error("expected reset to clear stream state")
	}
}

func TestEmptyInput(t *testing.T) {
	r := New(48000, 8000)
	if out := r.Resample(nil, nil); len(out) != 0 {
		t.Errorf("expected no output, got %d samples", len(out))
	}
}
