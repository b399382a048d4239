// ABOUTME: ffmpeg-backed decoder
// ABOUTME: Runs an external ffmpeg process that writes s16le PCM to stdout
package decode

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/Robin-Sch/2IC80/pkg/audio"
)

// FFmpeg decodes any format ffmpeg understands
type FFmpeg struct {
	// Binary is the ffmpeg executable (default: "ffmpeg" from PATH)
	Binary string
}

// NewFFmpeg creates an ffmpeg decoder
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Binary: "ffmpeg"}
}

// Name identifies the decoder in logs
func (f *FFmpeg) Name() string { return "ffmpeg" }

// Args returns the ffmpeg arguments used to decode path
func (f *FFmpeg) Args(path string) []string {
	return []string{
		"-loglevel", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", fmt.Sprintf("%d", audio.Link.Channels),
		"-ar", fmt.Sprintf("%d", audio.Link.SampleRate),
		"-",
	}
}

// Start launches ffmpeg for path
func (f *FFmpeg) Start(ctx context.Context, path string) (*Stream, error) {
	binary := f.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, binary, f.Args(path)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get ffmpeg stdout: %w", err)
	}
	stderr := &tailBuffer{max: 2048}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	log.Printf("FFmpeg started - decoding %s", path)

	s := newStream()
	go pump(ctx, s, stdout, func() error {
		if err := cmd.Wait(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("ffmpeg: %w: %s", err, msg)
			}
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return nil
	})

	return s, nil
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
