// ABOUTME: In-band firmware marker codec
// ABOUTME: Recognizes and strips 4-byte repeated sentinels at chunk starts
// Package marker implements the narrow status protocol the firmware interleaves
// with audio bytes on the serial link.
//
// A marker is a single byte value repeated Width times at the very start of an
// inbound chunk. Only the first Width bytes of a chunk are inspected; the link
// delivers markers chunk-aligned, so there is no mid-chunk scanning. A value
// that is not in the configured Table is ordinary audio.
//
// Genuine audio that happens to start a chunk with four copies of a known id is
// indistinguishable from a marker and loses those four bytes. The framing is
// kept as the firmware emits it.
//
// Example:
//
//	codec := marker.NewCodec(marker.ReceiverTable)
//	res := codec.Decode(chunk)
//	if res.Marker != nil && !res.Repeat {
//	    log.Println(res.Marker.Description)
//	}
//	if res.Forward() {
//	    sink.Write(res.Payload)
//	}
package marker
