package voice

import (
	"context"
	"fmt"
	"os"

	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/sirupsen/logrus"
)

// Google synthesizes through the Google Translate batch endpoint via
// htgo-tts. The library caches by file name, so entries are keyed by
// hash(text) alone; changing Language reuses a stale entry. Known
// quirk, kept on purpose until a product decision folds the language
// into the key.
type Google struct {
	Folder   string
	Language string
}

func (api *Google) TextToSpeech(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	speech := htgotts.Speech{Folder: api.Folder, Language: api.Language}
	path, err := speech.CreateSpeechFile(text, hashString(text))
	if err != nil {
		return "", fmt.Errorf("%w; %v", ErrBackendUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	// the endpoint answers over-long lines with a tiny junk MP3
	if info.Size() == 1685 {
		logrus.WithField("line", text).Infoln("google returned bad MP3 file")
		return "", fmt.Errorf("%w; line too long", ErrBackendUnavailable)
	}
	return path, nil
}
