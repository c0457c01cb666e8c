//go:build linux

package voice

import (
	"context"
	"fmt"
	"os/exec"
)

// speechCommand builds an espeak render-to-WAV invocation, preferring
// espeak-ng when both are installed.
func speechCommand(ctx context.Context, text, voiceID, outPath string) (*exec.Cmd, error) {
	for _, bin := range []string{"espeak-ng", "espeak"} {
		path, err := exec.LookPath(bin)
		if err != nil {
			continue
		}
		args := []string{"-w", outPath}
		if voiceID != "" {
			args = append(args, "-v", voiceID)
		}
		args = append(args, text)
		return exec.CommandContext(ctx, path, args...), nil
	}
	return nil, fmt.Errorf("no speech engine found: install espeak-ng or espeak")
}
