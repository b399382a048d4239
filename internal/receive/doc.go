// ABOUTME: Receive package documentation
// ABOUTME: Marker stripping and audio forwarding for the receiving role
// Package receive turns inbound link bytes into playback.
//
// Chunks starting with a firmware marker have the marker stripped and
// reported once per run of identical markers. Audio arriving before the
// sink is ready is dropped rather than queued.
package receive
