// ABOUTME: Protocol package documentation
// ABOUTME: JSON event messages exchanged with bridge watchers
// Package protocol defines the JSON events a running bridge streams to
// watchers. Every event is a Message with a type string and a payload.
//
// Example:
//
//	msg, err := protocol.Decode(data)
//	if msg.Type == protocol.TypeMarker {
//	    var m protocol.MarkerSeen
//	    err = protocol.DecodePayload(msg, &m)
//	}
package protocol
