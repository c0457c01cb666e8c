package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestVoiceRSS(t *testing.T, handler http.HandlerFunc) (*VoiceRSS, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := NewVoiceRSS(t.TempDir(), "en-us", "", 0, "testkey")
	api.Endpoint = srv.URL
	return api, srv
}

func TestVoiceRSSMissFetchesAndCaches(t *testing.T) {
	calls := 0
	api, _ := newTestVoiceRSS(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "testkey", r.URL.Query().Get("key"))
		assert.Equal(t, "hello", r.URL.Query().Get("src"))
		assert.Equal(t, "en-us", r.URL.Query().Get("hl"))
		assert.Equal(t, "MP3", r.URL.Query().Get("c"))
		assert.Equal(t, "16khz_16bit_stereo", r.URL.Query().Get("f"))
		w.Write([]byte("mp3-bytes"))
	})

	path, err := api.TextToSpeech(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, api.CachePath("hello"), path)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))

	// second request for the same text never hits the network
	_, err = api.TextToSpeech(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestVoiceRSSErrorBody(t *testing.T) {
	api, _ := newTestVoiceRSS(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ERROR: The subscription is expired!"))
	})

	_, err := api.TextToSpeech(context.Background(), "hello")
	var backendErr *BackendError
	assert.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Message, "subscription is expired")

	// failures must not poison the cache
	_, statErr := os.Stat(api.CachePath("hello"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestVoiceRSSHTTPError(t *testing.T) {
	api, _ := newTestVoiceRSS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := api.TextToSpeech(context.Background(), "hello")
	var backendErr *BackendError
	assert.ErrorAs(t, err, &backendErr)
	assert.Contains(t, backendErr.Message, "503")
}

func TestVoiceRSSDemoKeyWhenUnconfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DemoKey, r.URL.Query().Get("key"))
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	api := NewVoiceRSS(t.TempDir(), "en-us", "", 0, "")
	api.Endpoint = srv.URL
	assert.NotNil(t, api.limiter)

	_, err := api.TextToSpeech(context.Background(), "hello")
	assert.NoError(t, err)
}

func TestVoiceRSSCacheKeyCoversParameters(t *testing.T) {
	api := NewVoiceRSS(t.TempDir(), "en-us", "", 0, "k")
	base := api.CachePath("hello")

	api.Voice = "Mary"
	assert.NotEqual(t, base, api.CachePath("hello"))

	api.Voice = ""
	api.Speed = 3
	assert.NotEqual(t, base, api.CachePath("hello"))

	api.Speed = 0
	assert.Equal(t, base, api.CachePath("hello"))
}

func TestVoiceRSSCanceledContext(t *testing.T) {
	api := NewVoiceRSS(t.TempDir(), "en-us", "", 0, "k")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.TextToSpeech(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
