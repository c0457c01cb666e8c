package voice

import (
	"context"
	"fmt"
	"os"
)

// Local synthesizes with the platform speech engine via a one-shot
// process per request. Each process is registered with Engines for the
// lifetime of the request so a global stop can kill it, then removed.
// Output is a transient WAV file, not a cache entry.
type Local struct {
	VoiceID string
	Engines *Engines

	// OnTransient is told about the temp files this engine writes so
	// the janitor can reclaim them later.
	OnTransient func(path string)
}

func (api *Local) TextToSpeech(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "ttsoverlay-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file; %w", err)
	}
	outPath := f.Name()
	f.Close()

	cmd, err := speechCommand(ctx, text, api.VoiceID, outPath)
	if err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("%w; %v", ErrEngine, err)
	}

	eng := &Engine{cmd: cmd}
	if api.Engines != nil {
		api.Engines.add(eng)
		defer api.Engines.remove(eng)
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("%w; %v: %s", ErrEngine, err, out)
	}

	if err := ctx.Err(); err != nil {
		os.Remove(outPath)
		return "", err
	}

	if api.OnTransient != nil {
		api.OnTransient(outPath)
	}
	return outPath, nil
}
