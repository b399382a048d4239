// ABOUTME: Receive path that strips firmware markers and plays the audio
// ABOUTME: Forwards link bytes to the sink once it is ready
package receive

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Robin-Sch/2IC80/internal/link"
	"github.com/Robin-Sch/2IC80/internal/metrics"
	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/Robin-Sch/2IC80/pkg/audio/output"
	"github.com/Robin-Sch/2IC80/pkg/marker"
)

// Config holds receiver configuration
type Config struct {
	// Link delivers inbound chunks (required)
	Link link.Link

	// Sink plays the audio (required)
	Sink output.Sink

	// ReadyTimeout is how long to wait for the sink before assuming it is
	// ready (default: 1s)
	ReadyTimeout time.Duration

	// ProgressInterval is the progress report period (default: 1s)
	ProgressInterval time.Duration

	// Label prefixes log lines, e.g. "BOB"
	Label string

	// Metrics records throughput (optional)
	Metrics *metrics.Metrics

	// OnReady is called once the sink is usable; assumed is true when the
	// timeout fired first
	OnReady func(assumed bool)

	// OnMarker is called for each new firmware marker
	OnMarker func(marker.Marker)

	// OnProgress is called when the received total changed since the last
	// report
	OnProgress func(Session)

	// OnSinkError is called for each failed sink write
	OnSinkError func(error)
}

// Session accumulates totals for the lifetime of the receive connection
type Session struct {
	// Received counts every inbound byte, marker bytes included
	Received int64

	// Forwarded counts audio bytes handed to the sink
	Forwarded int64

	// Dropped counts chunks that arrived before the sink was ready
	Dropped int64

	// SinkErrors counts failed sink writes
	SinkErrors int64

	// Overflow counts audio bytes the sink discarded itself
	Overflow int64

	// Markers counts every classified marker; Repeats the suppressed ones
	Markers int64
	Repeats int64

	// LastMarker is the most recent marker reported, if any
	LastMarker *marker.Marker
}

// overflowSink is implemented by sinks that drop audio when playback lags
type overflowSink interface {
	Dropped() int64
}

// Seconds returns the audio duration of the received bytes
func (s Session) Seconds() float64 {
	return audio.Link.Seconds(s.Received)
}

// Receiver owns the link and sink for the lifetime of Run
type Receiver struct {
	config  Config
	codec   *marker.Codec
	session Session
	ready   bool
}

// New creates a receiver
func New(config Config) (*Receiver, error) {
	if config.Link == nil {
		return nil, fmt.Errorf("link is required")
	}
	if config.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if config.ReadyTimeout == 0 {
		config.ReadyTimeout = time.Second
	}
	if config.ProgressInterval == 0 {
		config.ProgressInterval = time.Second
	}
	if config.Label == "" {
		config.Label = "RX"
	}

	return &Receiver{
		config: config,
		codec:  marker.NewCodec(marker.ReceiverTable),
	}, nil
}

// Session returns the current totals. Only call it from the goroutine
// running Run, or after Run has returned.
func (r *Receiver) Session() Session {
	return r.session
}

// Run consumes the link until ctx is cancelled or the link ends
func (r *Receiver) Run(ctx context.Context) error {
	label := r.config.Label

	log.Printf("[%s] Initializing speaker...", label)
	sinkReady := r.config.Sink.Ready()

	readyTimer := time.NewTimer(r.config.ReadyTimeout)
	defer readyTimer.Stop()
	readyTimeout := readyTimer.C

	progress := time.NewTicker(r.config.ProgressInterval)
	defer progress.Stop()
	var reported int64

	chunks := r.config.Link.Chunks()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-sinkReady:
			sinkReady = nil
			readyTimeout = nil
			r.sinkOpened()

		case <-readyTimeout:
			readyTimeout = nil
			if !r.ready {
				log.Printf("[%s] Speaker assumed ready (open event not received)", label)
				r.markReady(true)
			}

		case chunk, ok := <-chunks:
			if !ok {
				r.reportProgress()
				if err := r.config.Link.Err(); err != nil {
					return err
				}
				return link.ErrClosed
			}
			// A sink that is already open wins over a queued chunk
			if sinkReady != nil {
				select {
				case <-sinkReady:
					sinkReady = nil
					readyTimeout = nil
					r.sinkOpened()
				default:
				}
			}
			r.handle(chunk)

		case <-progress.C:
			if r.session.Received != reported {
				reported = r.session.Received
				r.reportProgress()
			}
		}
	}
}

func (r *Receiver) sinkOpened() {
	if !r.ready {
		log.Printf("[%s] Speaker READY - listening for audio data...", r.config.Label)
		r.markReady(false)
	}
}

func (r *Receiver) markReady(assumed bool) {
	r.ready = true
	if r.config.OnReady != nil {
		r.config.OnReady(assumed)
	}
}

// handle processes one inbound chunk
func (r *Receiver) handle(chunk []byte) {
	r.session.Received += int64(len(chunk))
	r.config.Metrics.RecordReceived(len(chunk))

	res := r.codec.Decode(chunk)
	if res.Marker != nil && !res.Repeat {
		m := *res.Marker
		r.session.LastMarker = &m

		log.Printf("[%s] %s", r.config.Label, m.Description)
		r.config.Metrics.RecordMarker(m.ID)
		if r.config.OnMarker != nil {
			r.config.OnMarker(m)
		}
	}

	if !res.Forward() {
		return
	}

	if !r.ready {
		r.session.Dropped++
		r.config.Metrics.RecordDropped()
		return
	}

	if err := r.config.Sink.Write(res.Payload); err != nil {
		r.session.SinkErrors++
		r.config.Metrics.RecordSinkError()
		log.Printf("[%s] Speaker write error: %v", r.config.Label, err)
		if r.config.OnSinkError != nil {
			r.config.OnSinkError(err)
		}
		return
	}

	r.session.Forwarded += int64(len(res.Payload))
	r.config.Metrics.RecordForwarded(len(res.Payload))
}

func (r *Receiver) reportProgress() {
	r.session.Markers, r.session.Repeats = r.codec.Stats()
	if o, ok := r.config.Sink.(overflowSink); ok {
		r.session.Overflow = o.Dropped()
		r.config.Metrics.RecordSinkOverflow(r.session.Overflow)
	}

	log.Printf("[%s] Received %d bytes (~%.1fs audio)", r.config.Label, r.session.Received, r.session.Seconds())
	if r.config.OnProgress != nil {
		r.config.OnProgress(r.session)
	}
}
