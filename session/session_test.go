package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ttsoverlay/settings"
)

type fakeTTS struct {
	mu    sync.Mutex
	path  string
	err   error
	texts []string
}

func (f *fakeTTS) TextToSpeech(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type playCall struct {
	path   string
	device int
	gain   float64
}

type fakeSink struct {
	mu      sync.Mutex
	plays   []playCall
	stopped int
	block   bool
	played  chan struct{}
}

func newFakeSink(block bool) *fakeSink {
	return &fakeSink{block: block, played: make(chan struct{}, 16)}
}

func (f *fakeSink) Play(ctx context.Context, path string, device int, gain float64) error {
	f.mu.Lock()
	f.plays = append(f.plays, playCall{path, device, gain})
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
	}
	f.played <- struct{}{}
	return nil
}

func (f *fakeSink) StopAll() {
	f.mu.Lock()
	f.stopped++
	f.mu.Unlock()
}

type fakeInjector struct {
	mu       sync.Mutex
	calls    []playCall
	keys     []string
	injected chan struct{}
}

func newFakeInjector() *fakeInjector {
	return &fakeInjector{injected: make(chan struct{}, 16)}
}

func (f *fakeInjector) Inject(ctx context.Context, path string, device int, gain float64, key string) error {
	f.mu.Lock()
	f.calls = append(f.calls, playCall{path, device, gain})
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	f.injected <- struct{}{}
	return nil
}

type fakeDisposer struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeDisposer) DisposeAll() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func waitSignal(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pipeline")
	}
}

func testSettings() *settings.Settings {
	return &settings.Settings{
		OutputDeviceIndex: 1,
		MicDeviceIndex:    settings.DeviceDisabled,
		OutputGain:        0.8,
		MicGain:           0.6,
	}
}

func TestSpeakPlaysOnSpeaker(t *testing.T) {
	sink := newFakeSink(false)
	tts := &fakeTTS{path: "artifact.mp3"}
	c := NewController(testSettings(), tts, sink, newFakeInjector())

	c.Speak("  hello world  ")
	waitSignal(t, sink.played)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []playCall{{"artifact.mp3", 1, 0.8}}, sink.plays)
	assert.Equal(t, []string{"hello world"}, tts.texts) // trimmed before synthesis
	assert.Equal(t, []string{"hello world"}, c.History())
}

func TestSpeakInjectsWhenMicConfigured(t *testing.T) {
	s := testSettings()
	s.MicDeviceIndex = 5
	s.VoiceChatKey = "v"

	sink := newFakeSink(false)
	inj := newFakeInjector()
	c := NewController(s, &fakeTTS{path: "artifact.mp3"}, sink, inj)

	c.Speak("hello")
	waitSignal(t, sink.played)
	waitSignal(t, inj.injected)

	inj.mu.Lock()
	defer inj.mu.Unlock()
	assert.Equal(t, []playCall{{"artifact.mp3", 5, 0.6}}, inj.calls)
	assert.Equal(t, []string{"v"}, inj.keys)
}

func TestSpeakSkipsInjectionWhenDisabled(t *testing.T) {
	sink := newFakeSink(false)
	inj := newFakeInjector()
	c := NewController(testSettings(), &fakeTTS{path: "a.mp3"}, sink, inj)

	c.Speak("hello")
	waitSignal(t, sink.played)

	inj.mu.Lock()
	defer inj.mu.Unlock()
	assert.Empty(t, inj.calls)
}

func TestSpeakIgnoresBlankInput(t *testing.T) {
	sink := newFakeSink(false)
	tts := &fakeTTS{path: "a.mp3"}
	c := NewController(testSettings(), tts, sink, newFakeInjector())

	c.Speak("")
	c.Speak("   \t ")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, tts.texts)
	assert.Empty(t, c.History())
}

func TestStopAllCancelsInFlight(t *testing.T) {
	sink := newFakeSink(true) // Play blocks until canceled
	engines := &fakeDisposer{}
	c := NewController(testSettings(), &fakeTTS{path: "a.mp3"}, sink, newFakeInjector())
	c.Engines = engines

	c.Speak("hello")
	// wait until playback is in flight
	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.plays) == 1
	}, 2*time.Second, 10*time.Millisecond)

	c.StopAll()
	waitSignal(t, sink.played)

	sink.mu.Lock()
	assert.Equal(t, 1, sink.stopped)
	sink.mu.Unlock()
	engines.mu.Lock()
	assert.Equal(t, 1, engines.calls)
	engines.mu.Unlock()
}

func TestStopAllIdempotentOnEmptySet(t *testing.T) {
	sink := newFakeSink(false)
	c := NewController(testSettings(), &fakeTTS{path: "a.mp3"}, sink, newFakeInjector())

	c.StopAll()
	c.StopAll()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, 2, sink.stopped)
}

func TestSuppressQueueCutsPreviousUtterance(t *testing.T) {
	s := testSettings()
	s.SuppressQueue = true

	sink := newFakeSink(true)
	c := NewController(s, &fakeTTS{path: "a.mp3"}, sink, newFakeInjector())

	c.Speak("first")
	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.plays) == 1
	}, 2*time.Second, 10*time.Millisecond)

	c.Speak("second")
	// the first Play unblocks because its context was canceled
	waitSignal(t, sink.played)
}

func TestReplaySpeaksHistorySlot(t *testing.T) {
	sink := newFakeSink(false)
	tts := &fakeTTS{path: "a.mp3"}
	c := NewController(testSettings(), tts, sink, newFakeInjector())

	c.Speak("older")
	waitSignal(t, sink.played)
	c.Speak("newer")
	waitSignal(t, sink.played)

	c.Replay(2)
	waitSignal(t, sink.played)

	tts.mu.Lock()
	defer tts.mu.Unlock()
	assert.Equal(t, []string{"older", "newer", "older"}, tts.texts)
	// replay does not reorder history
	assert.Equal(t, []string{"newer", "older"}, c.History())
}

func TestReplayUnknownSlotIgnored(t *testing.T) {
	sink := newFakeSink(false)
	tts := &fakeTTS{path: "a.mp3"}
	c := NewController(testSettings(), tts, sink, newFakeInjector())

	c.Replay(3)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, tts.texts)
}

func TestSynthesisFailureReported(t *testing.T) {
	sink := newFakeSink(false)
	c := NewController(testSettings(), &fakeTTS{err: assert.AnError}, sink, newFakeInjector())

	statuses := make(chan string, 8)
	c.OnStatus = func(s string) { statuses <- s }

	c.Speak("hello")

	assert.Equal(t, "Synthesizing…", <-statuses)
	failure := <-statuses
	assert.Contains(t, failure, "Synthesis failed")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Empty(t, sink.plays)
}
