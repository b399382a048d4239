// ABOUTME: Decoder interface and single-use decode streams
// ABOUTME: Shared plumbing that moves decoded PCM onto a channel
package decode

import (
	"context"
	"errors"
	"io"

	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/Robin-Sch/2IC80/pkg/audio/resample"
)

// ReadSize is the size of the reads decoders emit as chunks
const ReadSize = 4096

// Decoder starts decode sessions for media files
type Decoder interface {
	// Start begins decoding path. Each Stream is used for exactly one pass.
	Start(ctx context.Context, path string) (*Stream, error)

	// Name identifies the decoder in logs
	Name() string
}

// Stream is one decode session
type Stream struct {
	data chan []byte
	err  error
}

func newStream() *Stream {
	return &Stream{data: make(chan []byte, 16)}
}

// Data yields decoded link-format PCM. It is closed at end of stream.
func (s *Stream) Data() <-chan []byte {
	return s.data
}

// Err returns why the stream ended early, or nil at a clean end. Only valid
// once Data has been closed.
func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) finish(err error) {
	s.err = err
	close(s.data)
}

// send delivers one chunk unless ctx is cancelled first
func (s *Stream) send(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.data <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pump copies r onto the stream in ReadSize chunks until EOF or error
func pump(ctx context.Context, s *Stream, r io.Reader, closer func() error) {
	var err error
	for {
		buf := make([]byte, ReadSize)
		n, rerr := r.Read(buf)
		if n > 0 {
			if err = s.send(ctx, buf[:n]); err != nil {
				break
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				err = rerr
			}
			break
		}
	}

	if closer != nil {
		if cerr := closer(); cerr != nil && err == nil {
			err = cerr
		}
	}
	s.finish(err)
}

// frameSource yields interleaved PCM16 at the source's native rate
type frameSource interface {
	ReadFrames() ([]int16, error)
	Close() error
}

// converter reshapes native PCM into the link format
type converter struct {
	channels  int
	resampler *resample.Resampler
}

func newConverter(sampleRate, channels int) *converter {
	return &converter{
		channels:  channels,
		resampler: resample.New(sampleRate, audio.Link.SampleRate),
	}
}

func (c *converter) convert(interleaved []int16) []byte {
	mono := audio.Downmix(interleaved, c.channels)
	out := c.resampler.Resample(nil, mono)
	return audio.AppendInt16LE(make([]byte, 0, len(out)*2), out)
}

// pumpFrames converts every frame block from src onto the stream
func pumpFrames(ctx context.Context, s *Stream, src frameSource, conv *converter) {
	var err error
	for {
		frames, rerr := src.ReadFrames()
		if len(frames) > 0 {
			if chunk := conv.convert(frames); len(chunk) > 0 {
				if err = s.send(ctx, chunk); err != nil {
					break
				}
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				err = rerr
			}
			break
		}
	}

	if cerr := src.Close(); cerr != nil && err == nil {
		err = cerr
	}
	s.finish(err)
}
