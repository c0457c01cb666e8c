// Package playback streams synthesized artifacts to the speaker
// device.
package playback

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"ttsoverlay/audiodev"
	"ttsoverlay/transcoding"
)

const chunkFrames = 1024

// Player streams artifacts to an output device in fixed-size chunks.
// Every running Play is tracked so StopAll can cut playback without
// knowing who started it.
type Player struct {
	open audiodev.OpenFunc

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func NewPlayer(open audiodev.OpenFunc) *Player {
	return &Player{
		open:   open,
		active: make(map[string]context.CancelFunc),
	}
}

// Play blocks until the artifact has been streamed, the context is
// canceled, or StopAll cuts it. Cancellation is not an error.
func (p *Player) Play(ctx context.Context, path string, device int, gain float64) error {
	ctx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()

	p.mu.Lock()
	p.active[id] = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		delete(p.active, id)
		p.mu.Unlock()
	}()

	err := p.stream(ctx, path, device, gain)
	if err == context.Canceled || ctx.Err() != nil {
		return nil
	}
	return err
}

// StopAll cancels every running Play.
func (p *Player) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, cancel := range p.active {
		cancel()
		delete(p.active, id)
	}
}

func (p *Player) stream(ctx context.Context, path string, device int, gain float64) error {
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
	stream, err := p.open(device, src.Channels, src.SampleRate, buf)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start playback stream; %w", err)
	}
	defer stream.Stop()

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

		transcoding.Scale(chunk, gain)
		n := copy(buf, chunk)
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}

		if err := stream.Write(); err != nil {
			// underflow happens on slow machines; keep streaming
			if err == portaudio.OutputUnderflowed {
				logrus.Debugln("output underflow during playback")
				continue
			}
			return fmt.Errorf("failed to write playback chunk; %w", err)
		}
	}
}
