// ABOUTME: Audio fundamentals package for the serial audio bridge
// ABOUTME: Defines the fixed link Format and PCM16 byte helpers
// Package audio provides the audio types shared by the transmitter and receiver.
//
// The link carries a single fixed format: mono, 16-bit signed little-endian PCM
// at 8000 Hz, with no header. Everything that converts durations to byte counts
// goes through Format so both sides agree on the rate.
//
// Example:
//
//	f := audio.Link
//	f.BytesPerSecond()                 // 16000
//	f.BytesFor(10 * time.Millisecond)  // 160
//	f.Seconds(32000)                   // 2.0
package audio
