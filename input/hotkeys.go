package input

import (
	"fmt"
	"strings"
)

// Modifier bits as RegisterHotKey expects them.
const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008
)

// Binding ties a hotkey spec to a handler. IDs must be unique within
// one listener.
type Binding struct {
	ID      int
	Spec    string
	Handler func()
}

// ParseHotkey splits a spec like "ctrl+shift+3" into modifier bits and
// a virtual-key code. The last token must be a non-modifier key.
func ParseHotkey(spec string) (mods uint16, vk uint16, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return 0, 0, fmt.Errorf("empty hotkey spec %q", spec)
	}

	for _, part := range parts[:len(parts)-1] {
		switch strings.TrimSpace(part) {
		case "ctrl", "control":
			mods |= modControl
		case "alt":
			mods |= modAlt
		case "shift":
			mods |= modShift
		case "win", "super":
			mods |= modWin
		default:
			return 0, 0, fmt.Errorf("unknown modifier %q in hotkey %q", part, spec)
		}
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	switch key {
	case "ctrl", "control", "alt", "shift", "win", "super":
		return 0, 0, fmt.Errorf("hotkey %q ends in a modifier", spec)
	}
	code, ok := vkCode(key)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q in hotkey %q", errUnsupportedKey, key, spec)
	}
	return mods, code, nil
}
