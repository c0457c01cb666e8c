//go:build windows

package voice

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// speechCommand builds a SAPI render-to-WAV invocation through
// PowerShell's System.Speech wrapper.
func speechCommand(ctx context.Context, text, voiceID, outPath string) (*exec.Cmd, error) {
	script := fmt.Sprintf(`Add-Type -AssemblyName System.Speech; `+
		`$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; `+
		`%s`+
		`$s.SetOutputToWaveFile('%s'); `+
		`$s.Speak('%s'); `+
		`$s.Dispose()`,
		selectVoice(voiceID), escapePowerShell(outPath), escapePowerShell(text))

	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script), nil
}

func selectVoice(voiceID string) string {
	if voiceID == "" {
		return ""
	}
	return fmt.Sprintf(`$s.SelectVoice('%s'); `, escapePowerShell(voiceID))
}

func escapePowerShell(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
