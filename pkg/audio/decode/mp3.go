// ABOUTME: MP3 file decoder
// ABOUTME: Decodes MP3 with go-mp3 and converts to link PCM
package decode

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 decodes MP3 files natively
type MP3 struct{}

// Name identifies the decoder in logs
func (MP3) Name() string { return "mp3" }

// Start opens path and begins decoding
func (MP3) Start(ctx context.Context, path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", path, decoder.SampleRate())

	// go-mp3 always produces 16-bit stereo
	src := &mp3Frames{file: f, decoder: decoder, buf: make([]byte, ReadSize)}
	s := newStream()
	go pumpFrames(ctx, s, src, newConverter(decoder.SampleRate(), 2))
	return s, nil
}

type mp3Frames struct {
	file    *os.File
	decoder *mp3.Decoder
	buf     []byte
	carry   []byte
}

func (m *mp3Frames) ReadFrames() ([]int16, error) {
	n, err := m.decoder.Read(m.buf)
	data := append(m.carry, m.buf[:n]...)

	// Keep whole stereo frames only
	whole := len(data) - len(data)%4
	m.carry = append(m.carry[:0:0], data[whole:]...)

	return audio.Int16FromLE(data[:whole]), err
}

func (m *mp3Frames) Close() error {
	return m.file.Close()
}
