package audiodev

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Stream is the minimal surface the playback and injection loops need
// from a device stream. *portaudio.Stream satisfies it; tests use
// fakes.
type Stream interface {
	Start() error
	Write() error
	Stop() error
	Close() error
}

// OpenFunc opens an output stream on a device. The stream is bound to
// buf: fill it, call Write, repeat.
type OpenFunc func(deviceIndex, channels, sampleRate int, buf []int16) (Stream, error)

// OpenOutput opens a PortAudio output stream on the given device.
func OpenOutput(deviceIndex, channels, sampleRate int, buf []int16) (Stream, error) {
	dev, err := ResolveOutput(deviceIndex)
	if err != nil {
		return nil, err
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: channels,
			Latency:  dev.DefaultHighOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: len(buf) / channels,
	}

	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w; failed to open stream: %v", ErrDevice, err)
	}
	return stream, nil
}
