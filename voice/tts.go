// Package voice provides the pluggable text-to-speech backends. Every
// backend turns a line of text into an audio artifact on disk (MP3 or
// WAV) and caches network results by content hash.
package voice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

type TTS interface {
	// TextToSpeech converts text to speech and returns the path of
	// the generated audio artifact. Implementations must honor ctx
	// before and after their slow step so a cancelled request never
	// reaches playback.
	TextToSpeech(ctx context.Context, text string) (string, error)
}

var (
	// ErrBackendUnavailable means the network service could not be
	// reached or refused to synthesize.
	ErrBackendUnavailable = errors.New("speech backend unavailable")

	// ErrEngine means the local synthesis engine failed.
	ErrEngine = errors.New("local speech engine failed")
)

// BackendError is an error payload returned by a remote API.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("speech backend error: %s", e.Message)
}

// --- utilities for this package

func hashString(input string) string {
	hash := sha256.New()
	hash.Write([]byte(input))
	return hex.EncodeToString(hash.Sum(nil))
}
