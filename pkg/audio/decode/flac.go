// ABOUTME: FLAC file decoder
// ABOUTME: Decodes FLAC frames with mewkiz/flac and converts to link PCM
package decode

import (
	"context"
	"fmt"
	"log"

	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC decodes FLAC files natively
type FLAC struct{}

// Name identifies the decoder in logs
func (FLAC) Name() string { return "flac" }

// Start opens path and begins decoding
func (FLAC) Start(ctx context.Context, path string) (*Stream, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		path, sampleRate, channels, bitDepth)

	src := &flacFrames{stream: stream, channels: channels, bitDepth: bitDepth}
	s := newStream()
	go pumpFrames(ctx, s, src, newConverter(sampleRate, channels))
	return s, nil
}

type flacFrames struct {
	stream   *flac.Stream
	channels int
	bitDepth int
}

func (f *flacFrames) ReadFrames() ([]int16, error) {
	frame, err := f.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	n := int(frame.BlockSize)
	out := make([]int16, 0, n*f.channels)
	for i := 0; i < n; i++ {
		for ch := 0; ch < f.channels; ch++ {
			out = append(out, audio.SampleTo16Bit(frame.Subframes[ch].Samples[i], f.bitDepth))
		}
	}
	return out, nil
}

func (f *flacFrames) Close() error {
	return f.stream.Close()
}
