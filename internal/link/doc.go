// ABOUTME: Link package documentation
// ABOUTME: Serial and in-memory byte links for the audio bridge
// Package link carries raw bytes between the host and the bridge firmware.
//
// A link is exclusively owned by one loop per process. Closing it ends the
// read goroutine, which closes the Chunks channel.
//
// Example:
//
//	l, err := link.OpenSerial("/dev/ttyACM0", link.DefaultBaudRate)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Close()
//
//	for chunk := range l.Chunks() {
//	    // handle inbound bytes
//	}
package link
