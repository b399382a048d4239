// ABOUTME: Transmit package documentation
// ABOUTME: Looping paced playback onto the bridge link
// Package transmit plays a track onto the link in real time, forever.
//
// Each cycle starts a fresh decode session and a fresh buffer, paces the
// decoded bytes onto the link, and starts the next cycle as soon as the
// last byte has left. A cycle that sends nothing is followed by a short
// delay so a broken source does not spin.
//
// Example:
//
//	tx, err := transmit.New(transmit.Config{
//	    Track:   "assets/default.mp3",
//	    Decoder: decode.NewFFmpeg(),
//	    Link:    l,
//	    Label:   "ALICE",
//	})
//	err = tx.Run(ctx)
package transmit
