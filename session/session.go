// Package session coordinates the speak pipeline: synthesis, speaker
// playback, mic injection, history, and the global stop.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ttsoverlay/settings"
	"ttsoverlay/voice"
)

// Sink plays an artifact on the speaker device.
type Sink interface {
	Play(ctx context.Context, path string, device int, gain float64) error
	StopAll()
}

// Injector renders an artifact into the virtual microphone.
type Injector interface {
	Inject(ctx context.Context, path string, device int, gain float64, key string) error
}

// Disposer kills live synthesis processes.
type Disposer interface {
	DisposeAll()
}

// Controller runs speak requests. Each request gets its own task
// context so StopAll can cut synthesis, playback and injection in one
// sweep.
type Controller struct {
	Settings *settings.Settings
	TTS      voice.TTS
	Sink     Sink
	Mic      Injector
	Engines  Disposer

	// CacheDirs are the artifact caches ClearCache and CacheSize
	// operate on.
	CacheDirs []string

	// OnStatus receives short user-facing progress strings. Optional.
	OnStatus func(status string)

	mu      sync.Mutex
	tasks   map[string]context.CancelFunc
	history *History
}

func NewController(s *settings.Settings, tts voice.TTS, sink Sink, mic Injector) *Controller {
	return &Controller{
		Settings: s,
		TTS:      tts,
		Sink:     sink,
		Mic:      mic,
		tasks:    make(map[string]context.CancelFunc),
		history:  NewHistory(),
	}
}

// Speak queues the text for synthesis and playback. Empty and
// whitespace-only input is ignored.
func (c *Controller) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if c.Settings.SuppressQueue {
		c.StopAll()
	}
	c.history.Add(text)
	c.launch(text)
}

// Replay speaks the history entry at slot without re-adding it.
func (c *Controller) Replay(slot int) {
	text, ok := c.history.Get(slot)
	if !ok {
		return
	}
	if c.Settings.SuppressQueue {
		c.StopAll()
	}
	c.launch(text)
}

// History lists the replayable utterances, newest first.
func (c *Controller) History() []string {
	return c.history.Slots()
}

// StopAll cancels every in-flight request, cuts playback, and kills
// live synthesis processes.
func (c *Controller) StopAll() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.tasks))
	for id, cancel := range c.tasks {
		cancels = append(cancels, cancel)
		delete(c.tasks, id)
	}
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	c.Sink.StopAll()
	if c.Engines != nil {
		c.Engines.DisposeAll()
	}
	c.status("Playback stopped")
}

// CacheSize returns the total bytes held across the artifact caches.
func (c *Controller) CacheSize() int64 {
	var total int64
	for _, dir := range c.CacheDirs {
		size, err := voice.CacheSize(dir)
		if err != nil {
			logrus.WithError(err).WithField("dir", dir).Warnln("failed to size cache")
			continue
		}
		total += size
	}
	return total
}

// ClearCache empties every artifact cache.
func (c *Controller) ClearCache() {
	for _, dir := range c.CacheDirs {
		if err := voice.ClearCache(dir); err != nil {
			logrus.WithError(err).WithField("dir", dir).Warnln("failed to clear cache")
		}
	}
	c.status("Cache cleared")
}

func (c *Controller) launch(text string) {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.tasks[id] = cancel
	c.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			c.mu.Lock()
			delete(c.tasks, id)
			c.mu.Unlock()
		}()
		c.run(ctx, text)
	}()
}

func (c *Controller) run(ctx context.Context, text string) {
	c.status("Synthesizing…")

	path, err := c.TTS.TextToSpeech(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logrus.WithError(err).Errorln("synthesis failed")
		c.status("Synthesis failed: " + err.Error())
		return
	}

	s := c.Settings
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Sink.Play(ctx, path, s.OutputDeviceIndex, s.OutputGain)
	})
	if s.InjectionEnabled() && c.Mic != nil {
		g.Go(func() error {
			return c.Mic.Inject(ctx, path, s.MicDeviceIndex, s.MicGain, s.VoiceChatKey)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Errorln("playback failed")
		c.status("Playback failed: " + err.Error())
		return
	}
	c.status("")
}

func (c *Controller) status(s string) {
	if c.OnStatus != nil {
		c.OnStatus(s)
	}
}
