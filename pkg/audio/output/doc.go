// ABOUTME: Audio sink package for received PCM
// ABOUTME: Provides the Sink interface with oto, file and discard backends
// Package output provides audio sinks for the receiver.
//
// Opening a sink may be asynchronous: Ready is closed once the device can
// play. Some platforms never report readiness, so callers should fall back to
// a timeout rather than wait forever.
//
// Example:
//
//	sink, err := output.New("oto", audio.Link)
//	select {
//	case <-sink.Ready():
//	case <-time.After(time.Second):
//	}
//	err = sink.Write(pcm)
package output
