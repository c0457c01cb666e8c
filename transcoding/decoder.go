// Package transcoding normalizes audio artifacts into raw PCM frames
// and applies software gain.
package transcoding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrMissingCodec means the external decoding toolchain is absent. The
// request fails, the process does not.
var ErrMissingCodec = errors.New("ffmpeg not found; install ffmpeg to play MP3 artifacts")

// IsCompressed reports whether the artifact needs transcoding before
// it can be streamed.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// MP3ToWav transcodes an MP3 artifact to a transient 16-bit PCM WAV
// file and returns its path. The caller owns the file.
func MP3ToWav(ctx context.Context, mp3Path string) (string, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return "", ErrMissingCodec
	}

	out, err := os.CreateTemp("", "ttsoverlay-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file; %w", err)
	}
	outPath := out.Name()
	out.Close()

	run := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", mp3Path,
		"-vn",
		"-acodec", "pcm_s16le",
		outPath)
	if output, err := run.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg failed; %w: %s", err, output)
	}

	return outPath, nil
}

// EnsureWav returns a streamable WAV path for any artifact,
// transcoding when compressed. transient is true when the returned
// file was created here and should be reclaimed by the caller.
func EnsureWav(ctx context.Context, path string) (wavPath string, transient bool, err error) {
	if !IsCompressed(path) {
		return path, false, nil
	}
	wavPath, err = MP3ToWav(ctx, path)
	return wavPath, err == nil, err
}
