package mic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"ttsoverlay/audiodev"
	"ttsoverlay/transcoding"
)

type fakeKeys struct {
	mu       sync.Mutex
	presses  []string
	releases []string
	pressErr error
}

func (f *fakeKeys) Press(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pressErr != nil {
		return f.pressErr
	}
	f.presses = append(f.presses, name)
	return nil
}

func (f *fakeKeys) Release(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases = append(f.releases, name)
	return nil
}

func (f *fakeKeys) IsPressed(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.presses) > len(f.releases), nil
}

type fakeStream struct {
	writes   int
	writeErr error
	onWrite  func(n int)
	started  bool
	stopped  bool
	closed   bool
}

func (f *fakeStream) Start() error { f.started = true; return nil }
func (f *fakeStream) Stop() error  { f.stopped = true; return nil }
func (f *fakeStream) Close() error { f.closed = true; return nil }
func (f *fakeStream) Write() error {
	f.writes++
	if f.onWrite != nil {
		f.onWrite(f.writes)
	}
	return f.writeErr
}

func fakeOpen(stream *fakeStream) audiodev.OpenFunc {
	return func(device, channels, sampleRate int, buf []int16) (audiodev.Stream, error) {
		return stream, nil
	}
}

func writeArtifact(t *testing.T, samples []int16) string {
	path := filepath.Join(t.TempDir(), "artifact.wav")
	f, err := os.Create(path)
	assert.NoError(t, err)
	assert.NoError(t, transcoding.PCMToWav(samples, 1, 22050, f))
	assert.NoError(t, f.Close())
	return path
}

func tone(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(1000 * (i%2*2 - 1))
	}
	return samples
}

func TestInjectHoldsKeyForDuration(t *testing.T) {
	keys := &fakeKeys{}
	hold := &KeyHold{}
	stream := &fakeStream{}
	p := &Pipeline{Open: fakeOpen(stream), Keys: keys, Hold: hold}

	err := p.Inject(context.Background(), writeArtifact(t, tone(3000)), 2, 1.0, "v")
	assert.NoError(t, err)

	assert.Equal(t, []string{"v"}, keys.presses)
	assert.Equal(t, []string{"v"}, keys.releases)
	assert.Equal(t, 0, hold.Count())
	assert.True(t, stream.started)
	assert.True(t, stream.stopped)
	assert.True(t, stream.closed)
	assert.Equal(t, 3, stream.writes) // 3000 frames in 1024-frame chunks
}

func TestInjectEmptyArtifactNeverPresses(t *testing.T) {
	keys := &fakeKeys{}
	stream := &fakeStream{}
	p := &Pipeline{Open: fakeOpen(stream), Keys: keys, Hold: &KeyHold{}}

	err := p.Inject(context.Background(), writeArtifact(t, nil), 2, 1.0, "v")
	assert.NoError(t, err)

	assert.Empty(t, keys.presses)
	assert.Empty(t, keys.releases)
	assert.Equal(t, 0, stream.writes)
}

func TestInjectWithoutConfiguredKey(t *testing.T) {
	keys := &fakeKeys{}
	stream := &fakeStream{}
	p := &Pipeline{Open: fakeOpen(stream), Keys: keys, Hold: &KeyHold{}}

	err := p.Inject(context.Background(), writeArtifact(t, tone(1024)), 2, 1.0, "")
	assert.NoError(t, err)

	assert.Empty(t, keys.presses)
	assert.Equal(t, 1, stream.writes) // audio still flows
}

func TestInjectCancellationReleasesKey(t *testing.T) {
	keys := &fakeKeys{}
	hold := &KeyHold{}
	ctx, cancel := context.WithCancel(context.Background())

	stream := &fakeStream{onWrite: func(n int) {
		if n == 1 {
			cancel()
		}
	}}
	p := &Pipeline{Open: fakeOpen(stream), Keys: keys, Hold: hold}

	err := p.Inject(ctx, writeArtifact(t, tone(5000)), 2, 1.0, "v")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"v"}, keys.presses)
	assert.Equal(t, []string{"v"}, keys.releases)
	assert.Equal(t, 0, hold.Count())
}

func TestInjectWriteErrorReleasesKey(t *testing.T) {
	keys := &fakeKeys{}
	stream := &fakeStream{writeErr: errors.New("device gone")}
	p := &Pipeline{Open: fakeOpen(stream), Keys: keys, Hold: &KeyHold{}}

	err := p.Inject(context.Background(), writeArtifact(t, tone(3000)), 2, 1.0, "v")
	assert.Error(t, err)

	assert.Equal(t, []string{"v"}, keys.presses)
	assert.Equal(t, []string{"v"}, keys.releases)
}

func TestInjectPressFailureDoesNotRelease(t *testing.T) {
	keys := &fakeKeys{pressErr: errors.New("blocked")}
	hold := &KeyHold{}
	stream := &fakeStream{}
	p := &Pipeline{Open: fakeOpen(stream), Keys: keys, Hold: hold}

	// audio is still injected even when the key cannot be held
	err := p.Inject(context.Background(), writeArtifact(t, tone(1024)), 2, 1.0, "v")
	assert.NoError(t, err)

	assert.Empty(t, keys.presses)
	assert.Empty(t, keys.releases)
	assert.Equal(t, 0, hold.Count())
	assert.Equal(t, 1, stream.writes)
}

func TestKeyHoldCounter(t *testing.T) {
	h := &KeyHold{}
	assert.Equal(t, 0, h.Count())
	h.Inc()
	h.Inc()
	assert.Equal(t, 2, h.Count())
	h.Dec()
	h.Dec()
	h.Dec() // never goes negative
	assert.Equal(t, 0, h.Count())
}
