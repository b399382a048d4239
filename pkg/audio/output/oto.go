// ABOUTME: Oto-based audio sink implementation
// ABOUTME: Opens the device asynchronously and feeds a persistent player
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// DefaultQueueDuration is how much audio the oto queue holds before dropping
const DefaultQueueDuration = 2 * time.Second

// Oto sink implementation using oto library
type Oto struct {
	format audio.Format
	queue  *Queue

	mu     sync.Mutex
	otoCtx *oto.Context
	player *oto.Player
	ready  chan struct{}
	closed bool
}

// NewOto creates a new Oto sink
func NewOto(format audio.Format, maxQueued time.Duration) *Oto {
	return &Oto{
		format: format,
		queue:  NewQueue(format.BytesFor(maxQueued)),
		ready:  make(chan struct{}),
	}
}

// Open starts device initialization. It returns once the context exists;
// Ready closes when the device is actually playing.
func (o *Oto) Open() error {
	if o.format.BitDepth != 16 {
		return fmt.Errorf("oto only supports 16-bit output, got %d", o.format.BitDepth)
	}

	op := &oto.NewContextOptions{
		SampleRate:   o.format.SampleRate,
		ChannelCount: o.format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	o.mu.Lock()
	o.otoCtx = ctx
	o.mu.Unlock()

	go func() {
		<-readyChan

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.closed {
			return
		}

		// Persistent player that pulls from the queue
		o.player = o.otoCtx.NewPlayer(o.queue)
		o.player.Play()
		close(o.ready)

		log.Printf("Audio output initialized: %s", o.format)
	}()

	return nil
}

// Write queues samples for the player; it never blocks on the device
func (o *Oto) Write(p []byte) error {
	o.mu.Lock()
	ctx := o.otoCtx
	o.mu.Unlock()

	if ctx == nil {
		return fmt.Errorf("oto sink not opened")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("audio device error: %w", err)
	}
	if _, err := o.queue.Write(p); err != nil {
		return fmt.Errorf("queue write failed: %w", err)
	}
	return nil
}

// Ready is closed once the device is playing
func (o *Oto) Ready() <-chan struct{} {
	return o.ready
}

// Dropped returns bytes discarded because playback fell behind
func (o *Oto) Dropped() int64 {
	return o.queue.Dropped()
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	o.queue.Close()
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("suspend oto context: %w", err)
		}
	}
	return nil
}
