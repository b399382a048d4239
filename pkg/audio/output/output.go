// ABOUTME: Audio sink interface definition
// ABOUTME: Common interface and factory for PCM playback backends
package output

import (
	"fmt"
	"strings"

	"github.com/Robin-Sch/2IC80/pkg/audio"
)

// Sink plays link-format PCM
type Sink interface {
	// Write queues PCM bytes for playback
	Write(p []byte) error

	// Ready is closed once the backend is open
	Ready() <-chan struct{}

	// Close releases backend resources
	Close() error
}

// New creates a sink from a spec: "oto", "discard" or "file:<path>"
func New(spec string, format audio.Format) (Sink, error) {
	switch {
	case spec == "" || spec == "oto":
		o := NewOto(format, DefaultQueueDuration)
		if err := o.Open(); err != nil {
			return nil, err
		}
		return o, nil
	case spec == "discard":
		return NewDiscard(), nil
	case strings.HasPrefix(spec, "file:"):
		return NewFile(strings.TrimPrefix(spec, "file:"))
	default:
		return nil, fmt.Errorf("unknown sink: %s (supported: oto, discard, file:<path>)", spec)
	}
}

// closedChan is a Ready channel for sinks that open synchronously
func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
