package transcoding

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCMStream reads 16-bit PCM frames from a WAV artifact in fixed-size
// chunks suitable for device streaming.
type PCMStream struct {
	Channels   int
	SampleRate int
	BitDepth   int

	f   *os.File
	dec *wav.Decoder
}

func OpenWav(path string) (*PCMStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact; %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	return &PCMStream{
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		f:          f,
		dec:        dec,
	}, nil
}

// ReadChunk reads up to frames audio frames. It returns io.EOF once
// the stream is exhausted; the final chunk may be short.
func (s *PCMStream) ReadChunk(frames int) ([]int16, error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: s.Channels, SampleRate: s.SampleRate},
		Data:   make([]int, frames*s.Channels),
	}

	n, err := s.dec.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM frames; %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(buf.Data[i])
	}
	return out, nil
}

func (s *PCMStream) Close() error {
	return s.f.Close()
}

// PCMToWav encodes interleaved 16-bit samples as a WAV stream.
func PCMToWav(pcm []int16, channels, sampleRate int, output io.WriteSeeker) error {
	format := &audio.Format{SampleRate: sampleRate, NumChannels: channels}
	e := wav.NewEncoder(output, format.SampleRate, 16, format.NumChannels, 1)

	intBuffer := &audio.IntBuffer{
		Format:         format,
		Data:           convertToIntSlice(pcm),
		SourceBitDepth: 16,
	}
	if err := e.Write(intBuffer); err != nil {
		return err
	}

	return e.Close()
}

// Convert []int16 to []int for IntBuffer
func convertToIntSlice(data []int16) []int {
	result := make([]int, len(data))
	for i, v := range data {
		result[i] = int(v)
	}
	return result
}
