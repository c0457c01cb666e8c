// Package mic renders synthesized speech into the virtual microphone
// device while holding the configured push-to-talk key.
package mic

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"ttsoverlay/audiodev"
	"ttsoverlay/input"
	"ttsoverlay/transcoding"
)

const chunkFrames = 1024

// Pipeline owns one injection path: a stream opener for the virtual
// cable, a key emulator, and the shared hold counter the watchdog
// reads.
type Pipeline struct {
	Open audiodev.OpenFunc
	Keys input.Keys
	Hold *KeyHold
}

// Inject streams the artifact into the mic device. The push-to-talk
// key is pressed only once the first non-empty chunk is about to flow,
// and released exactly once on every exit path.
func (p *Pipeline) Inject(ctx context.Context, path string, device int, gain float64, key string) error {
	wavPath, transient, err := transcoding.EnsureWav(ctx, path)
	if err != nil {
		return err
	}
	if transient {
		defer os.Remove(wavPath)
	}

	src, err := transcoding.OpenWav(wavPath)
	if err != nil {
		return err
	}
	defer src.Close()

	buf := make([]int16, chunkFrames*src.Channels)
	stream, err := p.Open(device, src.Channels, src.SampleRate, buf)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start injection stream; %w", err)
	}
	defer stream.Stop()

	guard := &keyGuard{keys: p.Keys, hold: p.Hold, key: key}
	defer guard.Release()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := src.ReadChunk(chunkFrames)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(chunk) > 0 {
			guard.Press()
		}

		transcoding.Scale(chunk, gain)
		n := copy(buf, chunk)
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}

		if err := stream.Write(); err != nil {
			if err == portaudio.OutputUnderflowed {
				logrus.Debugln("output underflow during injection")
				continue
			}
			return fmt.Errorf("failed to write injection chunk; %w", err)
		}
	}
}

// keyGuard holds the push-to-talk key for one injection. Press is
// armed once; Release runs once no matter how many exit paths hit it.
type keyGuard struct {
	keys input.Keys
	hold *KeyHold
	key  string

	attempted bool
	pressed   bool
	release   sync.Once
}

func (g *keyGuard) Press() {
	if g.key == "" || g.attempted {
		return
	}
	g.attempted = true

	if err := g.keys.Press(g.key); err != nil {
		logrus.WithError(err).WithField("key", g.key).Warnln("failed to press push-to-talk key")
		return
	}
	g.pressed = true
	if g.hold != nil {
		g.hold.Inc()
	}
}

func (g *keyGuard) Release() {
	g.release.Do(func() {
		if !g.pressed {
			return
		}
		if err := g.keys.Release(g.key); err != nil {
			logrus.WithError(err).WithField("key", g.key).Warnln("failed to release push-to-talk key")
		}
		if g.hold != nil {
			g.hold.Dec()
		}
	})
}
