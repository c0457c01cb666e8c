// Package settings holds the flat session configuration for the overlay.
package settings

import (
	"fmt"

	"ttsoverlay/storage"
)

// MaxGain is the upper bound for output and mic gain. 1.0 is unity;
// anything above it is software amplification with hard clipping.
const MaxGain = 2.0

// DeviceDisabled is the mic-device sentinel meaning injection is off.
const DeviceDisabled = -1

// Backend selects which speech synthesizer handles requests.
type Backend int

const (
	BackendGoogle Backend = iota
	BackendLocal
	BackendVoiceRSS
	BackendElevenLabs
)

func (b Backend) String() string {
	switch b {
	case BackendGoogle:
		return "google"
	case BackendLocal:
		return "local"
	case BackendVoiceRSS:
		return "voicerss"
	case BackendElevenLabs:
		return "elevenlabs"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend maps a stored engine name to a Backend. Unknown names
// fall back to the Google backend, which needs no credentials.
func ParseBackend(name string) Backend {
	switch name {
	case "local":
		return BackendLocal
	case "voicerss":
		return BackendVoiceRSS
	case "elevenlabs":
		return BackendElevenLabs
	default:
		return BackendGoogle
	}
}

// GoogleConfig configures the Google Translate batch backend.
type GoogleConfig struct {
	Language string
}

// LocalConfig configures the in-process (exec) speech engine.
type LocalConfig struct {
	VoiceID string
}

// VoiceRSSConfig configures the VoiceRSS REST backend. An empty APIKey
// means the shared demo key is used.
type VoiceRSSConfig struct {
	Language string
	Voice    string
	APIKey   string
	Speed    int
}

// ElevenLabsConfig configures the ElevenLabs cloud backend.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
}

// Settings is the full session configuration. Loaded once at startup;
// mutated only through Save.
type Settings struct {
	OutputDeviceIndex int
	MicDeviceIndex    int // DeviceDisabled turns injection off
	OutputGain        float64
	MicGain           float64

	Backend    Backend
	Google     GoogleConfig
	Local      LocalConfig
	VoiceRSS   VoiceRSSConfig
	ElevenLabs ElevenLabsConfig

	VoiceChatKey        string // push-to-talk key held during injection
	HistoryModifier     string // modifier for the digit replay hotkeys
	ToggleVisibilityKey string
	FocusWindowKey      string
	SuppressQueue       bool // new utterances cancel in-flight ones

	disk *storage.Disk
}

// Load reads settings from the YAML document at path. Missing keys get
// defaults; a missing file yields all defaults. If a legacy
// settings.json sits next to the document it is migrated first.
func Load(path string) (*Settings, error) {
	disk, err := storage.NewDisk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings; %w", err)
	}

	if err := migrateLegacy(disk, path); err != nil {
		return nil, err
	}

	s := &Settings{
		OutputDeviceIndex: disk.GetInt("output_device_index", 0),
		MicDeviceIndex:    disk.GetInt("mic_device_index", DeviceDisabled),
		OutputGain:        clampGain(disk.GetFloat("output_gain", 0.8)),
		MicGain:           clampGain(disk.GetFloat("mic_gain", 0.8)),
		Backend:           ParseBackend(disk.GetString("tts_engine", "google")),
		Google: GoogleConfig{
			Language: disk.GetString("google_language", "en"),
		},
		Local: LocalConfig{
			VoiceID: disk.GetString("voice_id", ""),
		},
		VoiceRSS: VoiceRSSConfig{
			Language: disk.GetString("voicerss_language", "en-us"),
			Voice:    disk.GetString("voicerss_voice", ""),
			APIKey:   disk.GetString("voicerss_api_key", ""),
			Speed:    disk.GetInt("voicerss_speed", 0),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:  disk.GetString("elevenlabs_api_key", ""),
			VoiceID: disk.GetString("elevenlabs_voice_id", ""),
		},
		VoiceChatKey:        disk.GetString("voice_chat_key", ""),
		HistoryModifier:     disk.GetString("history_hotkey_modifier", "ctrl"),
		ToggleVisibilityKey: disk.GetString("toggle_visibility_key", "alt+t"),
		FocusWindowKey:      disk.GetString("focus_window_key", ""),
		SuppressQueue:       disk.GetBool("remove_queue", false),
		disk:                disk,
	}

	return s, nil
}

// Save persists the current values with one write.
func (s *Settings) Save() error {
	if s.disk == nil {
		return fmt.Errorf("settings were not loaded from disk")
	}
	s.OutputGain = clampGain(s.OutputGain)
	s.MicGain = clampGain(s.MicGain)

	return s.disk.Update(map[string]interface{}{
		"output_device_index":     s.OutputDeviceIndex,
		"mic_device_index":        s.MicDeviceIndex,
		"output_gain":             s.OutputGain,
		"mic_gain":                s.MicGain,
		"tts_engine":              s.Backend.String(),
		"google_language":         s.Google.Language,
		"voice_id":                s.Local.VoiceID,
		"voicerss_language":       s.VoiceRSS.Language,
		"voicerss_voice":          s.VoiceRSS.Voice,
		"voicerss_api_key":        s.VoiceRSS.APIKey,
		"voicerss_speed":          s.VoiceRSS.Speed,
		"elevenlabs_api_key":      s.ElevenLabs.APIKey,
		"elevenlabs_voice_id":     s.ElevenLabs.VoiceID,
		"voice_chat_key":          s.VoiceChatKey,
		"history_hotkey_modifier": s.HistoryModifier,
		"toggle_visibility_key":   s.ToggleVisibilityKey,
		"focus_window_key":        s.FocusWindowKey,
		"remove_queue":            s.SuppressQueue,
	})
}

// InjectionEnabled reports whether mic injection is configured at all.
func (s *Settings) InjectionEnabled() bool {
	return s.MicDeviceIndex >= 0
}

func clampGain(g float64) float64 {
	if g < 0 {
		return 0
	}
	if g > MaxGain {
		return MaxGain
	}
	return g
}
