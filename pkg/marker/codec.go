// ABOUTME: Stateful marker decoder with duplicate suppression
// ABOUTME: Tracks the last classification so repeats are reported once
package marker

// Result is the outcome of decoding one inbound chunk
type Result struct {
	// Marker is set when the chunk started with a known marker
	Marker *Marker

	// Repeat is true when Marker equals the previous classification
	Repeat bool

	// Payload holds the residual bytes after any marker was stripped
	Payload []byte
}

// Forward reports whether the residual payload should reach the sink. A chunk
// that was only a marker has nothing to forward.
func (r Result) Forward() bool {
	return len(r.Payload) > 0
}

// Codec classifies inbound chunks against a table and suppresses consecutive
// duplicate reports. A chunk without a marker counts as a distinct
// classification, so a marker seen again after plain audio is reported again.
// A Codec is not safe for concurrent use.
type Codec struct {
	table   Table
	last    byte
	hasLast bool

	seen       int64
	suppressed int64
}

// NewCodec creates a codec for the given table
func NewCodec(table Table) *Codec {
	return &Codec{table: table}
}

// Decode classifies chunk and returns the residual payload
func (c *Codec) Decode(chunk []byte) Result {
	m, payload, ok := c.table.Classify(chunk)
	if !ok {
		c.hasLast = false
		return Result{Payload: chunk}
	}

	c.seen++
	res := Result{Marker: &m, Payload: payload}
	if c.hasLast && c.last == m.ID {
		res.Repeat = true
		c.suppressed++
	}
	c.last = m.ID
	c.hasLast = true

	return res
}

// Stats returns how many markers were seen and how many were suppressed
func (c *Codec) Stats() (seen, suppressed int64) {
	return c.seen, c.suppressed
}
