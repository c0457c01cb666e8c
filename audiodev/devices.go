// Package audiodev wraps the platform audio layer: device enumeration
// and output streams bound to an explicit device index. Device indices
// used throughout the overlay are positions in the PortAudio device
// table, matching what the settings store.
package audiodev

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// ErrDevice means a device index does not map to a usable device.
var ErrDevice = errors.New("invalid or unavailable audio device")

// Device describes one enumerated audio device.
type Device struct {
	Index          int
	Name           string
	InputChannels  int
	OutputChannels int
	SampleRate     float64
}

func Initialize() error {
	return portaudio.Initialize()
}

func Terminate() {
	_ = portaudio.Terminate()
}

// Outputs lists playback-capable devices. The virtual microphone cable
// shows up here too: it is an output we render into.
func Outputs() ([]Device, error) {
	return enumerate(func(info *portaudio.DeviceInfo) bool {
		return info.MaxOutputChannels > 0
	})
}

// Inputs lists capture-capable devices.
func Inputs() ([]Device, error) {
	return enumerate(func(info *portaudio.DeviceInfo) bool {
		return info.MaxInputChannels > 0
	})
}

func enumerate(keep func(*portaudio.DeviceInfo) bool) ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w; %v", ErrDevice, err)
	}

	var devices []Device
	for i, info := range infos {
		if !keep(info) {
			continue
		}
		devices = append(devices, Device{
			Index:          i,
			Name:           info.Name,
			InputChannels:  info.MaxInputChannels,
			OutputChannels: info.MaxOutputChannels,
			SampleRate:     info.DefaultSampleRate,
		})
	}
	return devices, nil
}

// ResolveOutput maps an index to a playback-capable device, or
// ErrDevice when it is out of range or capture-only.
func ResolveOutput(index int) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w; %v", ErrDevice, err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w; index %d out of range", ErrDevice, index)
	}
	if infos[index].MaxOutputChannels == 0 {
		return nil, fmt.Errorf("%w; device %q has no output channels", ErrDevice, infos[index].Name)
	}
	return infos[index], nil
}

// DefaultOutputIndex returns the table index of the default output
// device, for settings fallback when a stored index went stale.
func DefaultOutputIndex() (int, error) {
	def, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return 0, fmt.Errorf("%w; %v", ErrDevice, err)
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return 0, fmt.Errorf("%w; %v", ErrDevice, err)
	}
	for i, info := range infos {
		if info == def {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w; default output not in device table", ErrDevice)
}
