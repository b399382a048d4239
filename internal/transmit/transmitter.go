// ABOUTME: Transmit loop that paces a decoded track onto the link forever
// ABOUTME: Runs one playback cycle after another until shutdown
package transmit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Robin-Sch/2IC80/internal/link"
	"github.com/Robin-Sch/2IC80/internal/metrics"
	"github.com/Robin-Sch/2IC80/pkg/audio"
	"github.com/Robin-Sch/2IC80/pkg/audio/decode"
	"github.com/Robin-Sch/2IC80/pkg/marker"
	"github.com/Robin-Sch/2IC80/pkg/pacing"
)

// Config holds transmitter configuration
type Config struct {
	// Track is the media file decoded each cycle (required)
	Track string

	// Decoder turns Track into link PCM (required)
	Decoder decode.Decoder

	// Link carries the paced audio (required)
	Link link.Link

	// Pacing sets rate, chunk size and tick (default: pacing.DefaultConfig)
	Pacing pacing.Config

	// StartDelay is waited once before the first cycle
	StartDelay time.Duration

	// RestartDelay is waited after a cycle that sent nothing (default: 1s)
	RestartDelay time.Duration

	// ProgressInterval is the progress report period (default: 1s)
	ProgressInterval time.Duration

	// Label prefixes log lines, e.g. "ALICE"
	Label string

	// Metrics records throughput (optional)
	Metrics *metrics.Metrics

	// OnCycleStart is called when a cycle begins
	OnCycleStart func(cycle int)

	// OnCycleEnd is called when a cycle has sent its last byte
	OnCycleEnd func(CycleReport)

	// OnProgress is called about once per ProgressInterval
	OnProgress func(Progress)

	// OnMarker is called for each new firmware marker read from the link
	OnMarker func(marker.Marker)
}

// CycleReport summarizes a finished cycle
type CycleReport struct {
	Cycle    int
	Bytes    int64
	Buffered int
	Seconds  float64
	Duration time.Duration
	Total    int64
}

// Progress is a periodic snapshot of the running cycle
type Progress struct {
	Cycle   int
	Bytes   int64
	Seconds float64
	Backlog int64
	Total   int64
}

// Transmitter owns the link for the lifetime of Run
type Transmitter struct {
	config Config
	codec  *marker.Codec

	// linkDone is closed once the link's inbound side has ended
	linkDone chan struct{}

	total int64
}

// New creates a transmitter
func New(config Config) (*Transmitter, error) {
	if config.Track == "" {
		return nil, fmt.Errorf("track is required")
	}
	if config.Decoder == nil {
		return nil, fmt.Errorf("decoder is required")
	}
	if config.Link == nil {
		return nil, fmt.Errorf("link is required")
	}
	if config.Pacing == (pacing.Config{}) {
		config.Pacing = pacing.DefaultConfig()
	}
	if err := config.Pacing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pacing: %w", err)
	}
	if config.RestartDelay == 0 {
		config.RestartDelay = time.Second
	}
	if config.ProgressInterval == 0 {
		config.ProgressInterval = time.Second
	}
	if config.Label == "" {
		config.Label = "TX"
	}

	return &Transmitter{
		config:   config,
		codec:    marker.NewCodec(marker.TransmitterTable),
		linkDone: make(chan struct{}),
	}, nil
}

// Total returns bytes sent across all cycles
func (t *Transmitter) Total() int64 {
	return t.total
}

// Run transmits until ctx is cancelled or the link fails. It never returns
// nil: the result is ctx.Err() or link.ErrClosed, possibly wrapped with the loop number.
func (t *Transmitter) Run(ctx context.Context) error {
	go t.watchInbound()

	if t.config.StartDelay > 0 {
		log.Printf("[%s] Waiting %v for device...", t.config.Label, t.config.StartDelay)
		if err := t.wait(ctx, t.config.StartDelay); err != nil {
			return err
		}
	}

	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := t.runCycle(ctx, cycle)
		if err != nil {
			return err
		}

		if report.Bytes == 0 {
			log.Printf("[%s] Loop #%d sent nothing, retrying in %v", t.config.Label, cycle, t.config.RestartDelay)
			if err := t.wait(ctx, t.config.RestartDelay); err != nil {
				return err
			}
		}
	}
}

// wait sleeps for d unless ctx ends or the link closes first
func (t *Transmitter) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.linkDone:
		return t.linkErr()
	}
}

func (t *Transmitter) linkErr() error {
	if err := t.config.Link.Err(); err != nil {
		return err
	}
	return link.ErrClosed
}

// runCycle plays the track once. Decoder failures end the cycle early but
// are not errors; only shutdown and link failures are returned.
func (t *Transmitter) runCycle(ctx context.Context, cycle int) (CycleReport, error) {
	label := t.config.Label
	report := CycleReport{Cycle: cycle}

	log.Printf("[%s] Starting loop #%d", label, cycle)
	if t.config.OnCycleStart != nil {
		t.config.OnCycleStart(cycle)
	}

	// Ends the decode session with the cycle
	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	began := time.Now()

	stream, err := t.config.Decoder.Start(cycleCtx, t.config.Track)
	if err != nil {
		log.Printf("[%s] Decoder %s failed to start: %v", label, t.config.Decoder.Name(), err)
		t.config.Metrics.RecordDecoderError()
		return t.finish(report, began), nil
	}

	buf := pacing.NewBuffer()
	var sched *pacing.Scheduler
	data := stream.Data()

	ticker := time.NewTicker(t.config.Pacing.Interval)
	defer ticker.Stop()

	progress := time.NewTicker(t.config.ProgressInterval)
	defer progress.Stop()

	for {
		select {
		case <-ctx.Done():
			return report, ctx.Err()

		case <-t.linkDone:
			return report, t.linkErr()

		case chunk, ok := <-data:
			if ok {
				buf.Append(chunk)
			} else {
				data = nil
				if err := stream.Err(); err != nil {
					log.Printf("[%s] Decoder error, sending the %d bytes decoded so far: %v", label, buf.Len(), err)
					t.config.Metrics.RecordDecoderError()
				}
				buf.MarkComplete()
				log.Printf("[%s] Decoder finished - %d bytes buffered", label, buf.Len())
			}

			// The budget starts once the first bytes or the end are known
			if sched == nil {
				sched = pacing.NewScheduler(t.config.Pacing, buf, time.Now())
			}

		case now := <-ticker.C:
			if sched == nil {
				continue
			}

			res, err := sched.Tick(now, t.writeChunk)
			t.total += int64(res.Bytes)
			report.Bytes = res.Released
			t.config.Metrics.RecordSent(res.Chunks, res.Bytes)
			t.config.Metrics.RecordBacklog(res.Backlog)

			if err != nil {
				t.config.Metrics.RecordLinkError()
				return report, fmt.Errorf("loop #%d: %w", cycle, err)
			}

			if res.Done {
				report.Buffered = buf.Len()
				return t.finish(report, began), nil
			}

		case <-progress.C:
			if sched == nil {
				continue
			}
			t.reportProgress(cycle, sched)
		}
	}
}

// writeChunk sends one paced chunk. A failed write is logged and the chunk
// counts as sent; only a closed link stops the cycle.
func (t *Transmitter) writeChunk(chunk []byte) error {
	err := t.config.Link.Write(chunk)
	if err == nil || errors.Is(err, link.ErrClosed) {
		return err
	}

	t.config.Metrics.RecordLinkError()
	log.Printf("[%s] Serial write error: %v", t.config.Label, err)
	return nil
}

// finish logs and publishes a completed cycle
func (t *Transmitter) finish(report CycleReport, began time.Time) CycleReport {
	report.Seconds = audio.Link.Seconds(report.Bytes)
	report.Duration = time.Since(began)
	report.Total = t.total

	log.Printf("[%s] Loop #%d finished: %d bytes (~%.1fs audio)", t.config.Label, report.Cycle, report.Bytes, report.Seconds)
	log.Printf("[%s] Total sent: %d bytes", t.config.Label, t.total)

	t.config.Metrics.RecordCycle(report.Duration.Seconds())
	if t.config.OnCycleEnd != nil {
		t.config.OnCycleEnd(report)
	}
	return report
}

func (t *Transmitter) reportProgress(cycle int, sched *pacing.Scheduler) {
	released := sched.Released()
	p := Progress{
		Cycle:   cycle,
		Bytes:   released,
		Seconds: audio.Link.Seconds(released),
		Total:   t.total,
	}
	if expected := pacing.ExpectedBytes(time.Since(sched.Start()), t.config.Pacing.BytesPerSecond); expected > released {
		p.Backlog = expected - released
	}

	log.Printf("[%s] Sent: %d bytes (~%.1fs audio)", t.config.Label, p.Bytes, p.Seconds)
	if t.config.OnProgress != nil {
		t.config.OnProgress(p)
	}
}

// watchInbound reports firmware markers the bridge sends back. Nothing read
// here is forwarded.
func (t *Transmitter) watchInbound() {
	defer close(t.linkDone)

	for chunk := range t.config.Link.Chunks() {
		res := t.codec.Decode(chunk)
		if res.Marker == nil || res.Repeat {
			continue
		}

		log.Printf("[%s] %s", t.config.Label, res.Marker.Description)
		t.config.Metrics.RecordMarker(res.Marker.ID)
		if t.config.OnMarker != nil {
			t.config.OnMarker(*res.Marker)
		}
	}
}
