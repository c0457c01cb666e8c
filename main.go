package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ttsoverlay/audiodev"
	"ttsoverlay/input"
	"ttsoverlay/mic"
	"ttsoverlay/playback"
	"ttsoverlay/session"
	"ttsoverlay/settings"
	"ttsoverlay/voice"
)

const (
	settingsFile = "settings.yaml"
	cacheRoot    = "cache"
	transientTTL = 10 * time.Minute
)

func newInterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func cacheDirs() []string {
	return []string{
		filepath.Join(cacheRoot, "google"),
		filepath.Join(cacheRoot, "voicerss"),
		filepath.Join(cacheRoot, "elevenlabs"),
	}
}

func buildTTS(cfg *settings.Settings, engines *voice.Engines, janitor *session.Janitor) voice.TTS {
	switch cfg.Backend {
	case settings.BackendLocal:
		return &voice.Local{
			VoiceID:     cfg.Local.VoiceID,
			Engines:     engines,
			OnTransient: janitor.Track,
		}
	case settings.BackendVoiceRSS:
		return voice.NewVoiceRSS(
			filepath.Join(cacheRoot, "voicerss"),
			cfg.VoiceRSS.Language,
			cfg.VoiceRSS.Voice,
			cfg.VoiceRSS.Speed,
			cfg.VoiceRSS.APIKey,
		)
	case settings.BackendElevenLabs:
		return &voice.ElevenLabs{
			Folder:  filepath.Join(cacheRoot, "elevenlabs"),
			APIKey:  cfg.ElevenLabs.APIKey,
			VoiceID: cfg.ElevenLabs.VoiceID,
		}
	default:
		return &voice.Google{
			Folder:   filepath.Join(cacheRoot, "google"),
			Language: cfg.Google.Language,
		}
	}
}

// checkDevices validates the stored device indices against the current
// device table. A stale output index falls back to the default device;
// a stale mic index disables injection rather than streaming into the
// wrong device.
func checkDevices(cfg *settings.Settings) {
	if _, err := audiodev.ResolveOutput(cfg.OutputDeviceIndex); err != nil {
		idx, derr := audiodev.DefaultOutputIndex()
		if derr != nil {
			logrus.WithError(derr).Fatalln("no usable output device")
		}
		logrus.WithError(err).WithField("fallback", idx).
			Warnln("configured output device unavailable, using default")
		cfg.OutputDeviceIndex = idx
	}

	if cfg.InjectionEnabled() {
		if _, err := audiodev.ResolveOutput(cfg.MicDeviceIndex); err != nil {
			logrus.WithError(err).Warnln("configured mic device unavailable, injection disabled")
			cfg.MicDeviceIndex = settings.DeviceDisabled
		}
	}
}

func replayBindings(cfg *settings.Settings, ctrl *session.Controller) []input.Binding {
	bindings := make([]input.Binding, 0, 10)
	for digit := 0; digit <= 9; digit++ {
		slot := session.SlotForDigit(digit)
		bindings = append(bindings, input.Binding{
			ID:      digit + 1,
			Spec:    cfg.HistoryModifier + "+" + strconv.Itoa(digit),
			Handler: func() { ctrl.Replay(slot) },
		})
	}
	return bindings
}

func main() {
	if os.Getenv("TTS_DEBUG") != "" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := newInterruptContext(context.Background())
	defer cancel()

	if err := audiodev.Initialize(); err != nil {
		logrus.WithError(err).Fatalln("failed to initialize audio")
	}
	defer audiodev.Terminate()

	cfg, err := settings.Load(settingsFile)
	if err != nil {
		logrus.WithError(err).Fatalln("failed to load settings")
	}
	checkDevices(cfg)

	janitor := session.NewJanitor(transientTTL)
	janitor.Start()
	defer janitor.Stop()

	engines := voice.NewEngines()
	keys := input.NewEmulator()
	hold := &mic.KeyHold{}

	ctrl := session.NewController(
		cfg,
		buildTTS(cfg, engines, janitor),
		playback.NewPlayer(audiodev.OpenOutput),
		&mic.Pipeline{Open: audiodev.OpenOutput, Keys: keys, Hold: hold},
	)
	ctrl.Engines = engines
	ctrl.CacheDirs = cacheDirs()
	ctrl.OnStatus = func(status string) {
		if status != "" {
			fmt.Println(status)
		}
	}

	if cfg.InjectionEnabled() && cfg.VoiceChatKey != "" {
		if !keys.SelfTest(cfg.VoiceChatKey) {
			logrus.WithField("key", cfg.VoiceChatKey).
				Warnln("push-to-talk key press could not be verified")
		}
	}

	go session.WatchStuckKey(ctx, keys, hold, func() string { return cfg.VoiceChatKey })
	go session.SweepCaches(ctx, ctrl.CacheDirs, session.CacheCeiling)
	go func() {
		if err := input.ListenHotkeys(ctx, replayBindings(cfg, ctrl)); err != nil {
			logrus.WithError(err).Warnln("hotkey listener stopped")
		}
	}()

	logrus.WithField("backend", cfg.Backend.String()).Infoln("ready, type to speak")
	repl(ctx, cancel, ctrl, cfg)

	ctrl.StopAll()
}

// repl reads lines from stdin until EOF or shutdown. Lines starting
// with "/" are commands; everything else is spoken.
func repl(ctx context.Context, cancel context.CancelFunc, ctrl *session.Controller, cfg *settings.Settings) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !strings.HasPrefix(line, "/") {
				ctrl.Speak(line)
				continue
			}
			switch strings.TrimSpace(line) {
			case "/stop":
				ctrl.StopAll()
			case "/history":
				for i, text := range ctrl.History() {
					fmt.Printf("%2d: %s\n", i+1, text)
				}
			case "/devices":
				printDevices(cfg)
			case "/cache":
				fmt.Printf("cache holds %d bytes\n", ctrl.CacheSize())
			case "/clearcache":
				ctrl.ClearCache()
			case "/quit":
				cancel()
				return
			default:
				fmt.Println("commands: /stop /history /devices /cache /clearcache /quit")
			}
		}
	}
}

func printDevices(cfg *settings.Settings) {
	outputs, err := audiodev.Outputs()
	if err != nil {
		logrus.WithError(err).Errorln("failed to enumerate devices")
		return
	}
	for _, d := range outputs {
		marker := " "
		switch d.Index {
		case cfg.OutputDeviceIndex:
			marker = "*"
		case cfg.MicDeviceIndex:
			marker = ">"
		}
		fmt.Printf("%s %3d: %s (%d ch, %.0f Hz)\n",
			marker, d.Index, d.Name, d.OutputChannels, d.SampleRate)
	}
}
