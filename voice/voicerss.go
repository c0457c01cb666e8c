package voice

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DemoKey is VoiceRSS's shared demo key, used when no key is
// configured. Rate-limited by the provider, so we keep our own
// politeness limiter in front of it.
const DemoKey = "c7497b03d1c8437c90d1f50d2a9698d0"

const voiceRSSEndpoint = "https://api.voicerss.org/"

// VoiceRSS synthesizes through the VoiceRSS REST API. Artifacts are
// cached under Folder keyed by md5(text, language, voice, speed).
type VoiceRSS struct {
	Folder   string
	Language string
	Voice    string
	Speed    int // -10..10
	APIKey   string

	// Endpoint overrides the API URL, for tests.
	Endpoint string

	client  *http.Client
	limiter *rate.Limiter
}

func NewVoiceRSS(folder, language, voice string, speed int, apiKey string) *VoiceRSS {
	v := &VoiceRSS{
		Folder:   folder,
		Language: language,
		Voice:    voice,
		Speed:    speed,
		APIKey:   apiKey,
		Endpoint: voiceRSSEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	if apiKey == "" {
		// shared demo key: one request per second, tiny burst
		v.limiter = rate.NewLimiter(rate.Every(time.Second), 2)
		logrus.Infoln("no VoiceRSS API key configured, using demo key")
	}
	return v
}

// CachePath returns the artifact path for text under the current
// parameters, whether or not it exists yet.
func (api *VoiceRSS) CachePath(text string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s_%s_%d", text, api.Language, api.Voice, api.Speed)))
	return path.Join(api.Folder, hex.EncodeToString(sum[:])+".mp3")
}

func (api *VoiceRSS) TextToSpeech(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(api.Folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir; %w", err)
	}

	file := api.CachePath(text)
	if _, err := os.Stat(file); err == nil {
		return file, nil // cache hit, no network call
	}

	if api.limiter != nil {
		if err := api.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	key := api.APIKey
	if key == "" {
		key = DemoKey
	}

	params := url.Values{}
	params.Set("key", key)
	params.Set("src", text)
	params.Set("hl", api.Language)
	params.Set("r", strconv.Itoa(api.Speed))
	params.Set("c", "MP3")
	params.Set("f", "16khz_16bit_stereo")
	if api.Voice != "" {
		params.Set("v", api.Voice)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := api.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w; %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w; %v", ErrBackendUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &BackendError{Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	// the API reports failures as a 200 with an ERROR-prefixed body
	if bytes.HasPrefix(body, []byte("ERROR")) {
		return "", &BackendError{Message: string(body)}
	}
	if len(body) == 0 {
		return "", &BackendError{Message: "empty response"}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.WriteFile(file, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact to disk; %w", err)
	}

	return file, nil
}
