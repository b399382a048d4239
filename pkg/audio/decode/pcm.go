// ABOUTME: Raw PCM passthrough decoder
// ABOUTME: Streams files that already hold headerless link-format PCM
package decode

import (
	"context"
	"fmt"
	"os"
)

// Raw streams a file that already holds link-format PCM
type Raw struct{}

// Name identifies the decoder in logs
func (Raw) Name() string { return "raw" }

// Start opens path and begins streaming
func (Raw) Start(ctx context.Context, path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCM file: %w", err)
	}

	s := newStream()
	go pump(ctx, s, f, f.Close)
	return s, nil
}
