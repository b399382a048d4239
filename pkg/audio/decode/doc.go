// ABOUTME: Decoder collaborators that turn media files into link PCM
// ABOUTME: Provides ffmpeg, MP3, FLAC, WAV and raw PCM decode sessions
// Package decode turns a source media file into the link's PCM format
// (mono, 16-bit signed little-endian, 8000 Hz).
//
// Each call to Start creates a fresh, single-use Stream. Bytes arrive on
// Stream.Data as the decoder produces them; the channel closes at end of
// stream, after which Stream.Err reports whether decoding stopped early.
//
// Supports: ffmpeg (any format ffmpeg reads), MP3, FLAC, WAV (PCM16) and raw
// PCM. Native decoders downmix to mono and resample to 8 kHz.
//
// Example:
//
//	dec, err := decode.ForPath(decode.KindAuto, "assets/default.mp3")
//	stream, err := dec.Start(ctx, "assets/default.mp3")
//	for chunk := range stream.Data() {
//	    buf.Append(chunk)
//	}
//	if err := stream.Err(); err != nil {
//	    log.Printf("decode stopped early: %v", err)
//	}
package decode
