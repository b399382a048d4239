// ABOUTME: WAV file decoder
// ABOUTME: Reads integer PCM WAV files via go-audio/wav and converts to link PCM
package decode

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Robin-Sch/2IC80/pkg/audio"
)

// wavFramesPerRead bounds each PCMBuffer call
const wavFramesPerRead = 1024

// wavInfo is the subset of the fmt chunk the converter needs
type wavInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// WAV decodes integer PCM WAV files (16, 24 or 32 bit) natively
type WAV struct{}

// Name identifies the decoder in logs
func (WAV) Name() string { return "wav" }

// Start opens path and begins decoding
func (WAV) Start(ctx context.Context, path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	dec, info, err := readWAVInfo(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode WAV %s: %w", path, err)
	}

	log.Printf("Loaded WAV: %s (sample rate: %d Hz, channels: %d, %d-bit)", path, info.SampleRate, info.Channels, info.BitDepth)

	src := &wavFrames{
		file:     f,
		dec:      dec,
		bitDepth: info.BitDepth,
		buf: &goaudio.IntBuffer{
			Data: make([]int, wavFramesPerRead*info.Channels),
		},
	}
	s := newStream()
	go pumpFrames(ctx, s, src, newConverter(info.SampleRate, info.Channels))
	return s, nil
}

// readWAVInfo validates the header and positions dec at the PCM data
func readWAVInfo(r io.ReadSeeker) (*wav.Decoder, wavInfo, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, wavInfo{}, fmt.Errorf("invalid WAV file: %w", err)
		}
		return nil, wavInfo{}, fmt.Errorf("not a RIFF/WAVE file")
	}

	info := wavInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	if dec.WavAudioFormat != 1 {
		return nil, wavInfo{}, fmt.Errorf("unsupported WAV encoding: format=%d (supported: integer PCM)", dec.WavAudioFormat)
	}
	switch info.BitDepth {
	case 16, 24, 32:
	default:
		return nil, wavInfo{}, fmt.Errorf("unsupported WAV bit depth: %d (supported: 16, 24, 32)", info.BitDepth)
	}
	if info.Channels == 0 || info.SampleRate == 0 {
		return nil, wavInfo{}, fmt.Errorf("invalid WAV format: %d channels at %d Hz", info.Channels, info.SampleRate)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, wavInfo{}, fmt.Errorf("no PCM data: %w", err)
	}
	return dec, info, nil
}

type wavFrames struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *goaudio.IntBuffer
	bitDepth int
}

func (w *wavFrames) ReadFrames() ([]int16, error) {
	n, err := w.dec.PCMBuffer(w.buf)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}

	samples := make([]int16, n)
	for i, v := range w.buf.Data[:n] {
		samples[i] = audio.SampleTo16Bit(int32(v), w.bitDepth)
	}
	return samples, err
}

func (w *wavFrames) Close() error {
	return w.file.Close()
}
