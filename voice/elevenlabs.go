package voice

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/haguro/elevenlabs-go"
)

// ElevenLabs synthesizes through the ElevenLabs cloud API. Cached by
// hash(voice, text) so switching voices does not reuse old lines.
type ElevenLabs struct {
	Folder  string
	APIKey  string
	VoiceID string
}

// convert text to speech & save the output in the cache directory
func (api *ElevenLabs) TextToSpeech(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(api.Folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create out dir; %w", err)
	}

	file := path.Join(api.Folder, hashString(api.VoiceID+"\x00"+text)+".mp3")

	_, err := os.Stat(file)
	if err == nil {
		return file, nil // this voice line was already spoken!
	}

	client := elevenlabs.NewClient(ctx, api.APIKey, 30*time.Second)

	ttsReq := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
	}

	audio, err := client.TextToSpeech(api.VoiceID, ttsReq)
	if err != nil {
		return "", fmt.Errorf("%w; %v", ErrBackendUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.WriteFile(file, audio, 0644); err != nil {
		return "", fmt.Errorf("failed to write file to disk; %w", err)
	}

	return file, nil
}
