// ABOUTME: Audio resampling package
// ABOUTME: Provides streaming sample rate conversion for decoder output
// Package resample provides sample rate conversion utilities.
//
// Uses linear interpolation, which is adequate for an 8 kHz voice-grade link.
//
// Example:
//
//	r := resample.New(44100, 8000)
//	out := r.Resample(nil, samples)
package resample
