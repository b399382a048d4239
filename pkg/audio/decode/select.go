// ABOUTME: Decoder selection by name and file extension
// ABOUTME: Chooses ffmpeg or a native decoder for a source file
package decode

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Decoder kinds accepted by ForPath
const (
	KindAuto   = "auto"
	KindFFmpeg = "ffmpeg"
	KindNative = "native"
)

// Native returns the built-in decoder for path's extension
func Native(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		return MP3{}, nil
	case ".flac":
		return FLAC{}, nil
	case ".wav":
		return WAV{}, nil
	case ".pcm", ".raw", ".s16le":
		return Raw{}, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac, .wav, .pcm, .raw)", ext)
	}
}

// ForPath picks a decoder of the given kind for path. Auto uses ffmpeg when it
// is installed and a native decoder otherwise.
func ForPath(kind, path string) (Decoder, error) {
	switch kind {
	case KindFFmpeg:
		return NewFFmpeg(), nil
	case KindNative:
		return Native(path)
	case KindAuto, "":
		if _, err := exec.LookPath("ffmpeg"); err == nil {
			return NewFFmpeg(), nil
		}
		dec, err := Native(path)
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not installed and no native decoder: %w", err)
		}
		return dec, nil
	default:
		return nil, fmt.Errorf("unknown decoder kind: %s (supported: auto, ffmpeg, native)", kind)
	}
}
