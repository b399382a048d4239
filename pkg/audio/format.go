// ABOUTME: Audio format definitions for the serial link
// ABOUTME: Derives byte rates and durations from a fixed PCM format
package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Format describes a raw PCM stream
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Link is the only format carried across the serial link
var Link = Format{
	SampleRate: 8000,
	Channels:   1,
	BitDepth:   16,
}

// BytesPerFrame returns the size of one sample across all channels
func (f Format) BytesPerFrame() int {
	return f.Channels * (f.BitDepth / 8)
}

// BytesPerSecond returns the byte rate of the stream
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.BytesPerFrame()
}

// BytesFor returns how many bytes cover d, rounded down to whole frames
func (f Format) BytesFor(d time.Duration) int {
	n := int(d.Microseconds() * int64(f.BytesPerSecond()) / int64(time.Second/time.Microsecond))
	return n - n%f.BytesPerFrame()
}

// Seconds converts a byte count to seconds of audio
func (f Format) Seconds(n int64) float64 {
	bps := f.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return float64(n) / float64(bps)
}

// Validate checks the format is something the bridge can carry
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16)", f.BitDepth)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dbit/%dch", f.SampleRate, f.BitDepth, f.Channels)
}

// AppendInt16LE appends samples as little-endian PCM16 bytes
func AppendInt16LE(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}

// Int16FromLE decodes little-endian PCM16 bytes; a trailing odd byte is ignored
func Int16FromLE(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// SampleTo16Bit scales a signed sample of the given bit depth into 16-bit range
func SampleTo16Bit(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(sample)
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	default:
		return int16(sample << (16 - bitDepth))
	}
}

// Downmix averages interleaved frames into a mono signal
func Downmix(interleaved []int16, channels int) []int16 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(interleaved[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}
