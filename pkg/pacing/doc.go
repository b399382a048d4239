// ABOUTME: Real-time pacing engine for the serial transmitter
// ABOUTME: Provides the decode buffer and the catch-up chunk scheduler
// Package pacing releases buffered PCM at wall-clock rate.
//
// A Buffer accumulates bytes from a bursty decoder. A Scheduler, driven by a
// periodic tick, computes how many bytes should have left since the cycle
// started and releases chunks to catch up, never ahead of schedule and never
// more than MaxChunkBytes per write. A late tick releases several chunks at
// once; a slow decoder just leaves the scheduler behind until more bytes land.
//
// Example:
//
//	buf := pacing.NewBuffer()
//	sched := pacing.NewScheduler(pacing.DefaultConfig(), buf, time.Now())
//	ticker := time.NewTicker(sched.Interval())
//	for now := range ticker.C {
//	    res, err := sched.Tick(now, link.Write)
//	    if res.Done {
//	        break
//	    }
//	}
package pacing
