//go:build darwin

package voice

import (
	"context"
	"os/exec"
)

// speechCommand builds a `say` invocation rendering 16-bit PCM
// directly so no conversion step is needed afterwards.
func speechCommand(ctx context.Context, text, voiceID, outPath string) (*exec.Cmd, error) {
	args := []string{"-o", outPath, "--file-format=WAVE", "--data-format=LEI16@22050"}
	if voiceID != "" {
		args = append(args, "-v", voiceID)
	}
	args = append(args, text)
	return exec.CommandContext(ctx, "say", args...), nil
}
