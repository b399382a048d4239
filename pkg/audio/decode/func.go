// ABOUTME: Function adapter for in-process PCM producers
// ABOUTME: Lets generators and test fakes act as decoders
package decode

import "context"

// Func adapts a function producing link-format PCM into a Decoder. The
// function calls emit for each chunk; its return value becomes Stream.Err.
type Func func(ctx context.Context, path string, emit func([]byte) error) error

// Name identifies the decoder in logs
func (f Func) Name() string { return "func" }

// Start runs f in its own goroutine
func (f Func) Start(ctx context.Context, path string) (*Stream, error) {
	s := newStream()
	go func() {
		err := f(ctx, path, func(p []byte) error {
			return s.send(ctx, p)
		})
		s.finish(err)
	}()
	return s, nil
}
