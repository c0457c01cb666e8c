// Package input emulates keyboard events (the synthetic push-to-talk
// press) and listens for global hotkeys. Key names are lowercase
// ("a".."z", "0".."9", "f1".."f12", "space", "ctrl", ...); hotkey
// specs join modifiers and a key with "+" ("ctrl+3").
package input

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
	"github.com/sirupsen/logrus"
)

// Keys presses, releases and observes keyboard keys.
type Keys interface {
	Press(name string) error
	Release(name string) error
	// IsPressed reports whether the key is currently down. On
	// platforms without key-state queries it always reports false.
	IsPressed(name string) (bool, error)
}

var (
	errUnsupportedKey = errors.New("unsupported key")
	// errNoPlatformInjector means the native event injector is not
	// available on this platform and the uinput emulator must serve.
	errNoPlatformInjector = errors.New("no native key injector on this platform")
)

// Emulator injects key events natively where possible and falls back
// to the cross-platform uinput emulator when the native path fails or
// the target swallows the injected event.
type Emulator struct {
	mu sync.Mutex
	kb *keybd_event.KeyBonding
}

func NewEmulator() *Emulator {
	return &Emulator{}
}

func (e *Emulator) Press(name string) error {
	name = normalizeKey(name)
	if err := platformPress(name); err == nil {
		if down, verr := platformIsPressed(name); verr != nil || down {
			return nil
		}
		// some raw-input consumers drop injected events
		logrus.WithField("key", name).Debugln("native press not observed, retrying via emulator")
	} else if !errors.Is(err, errNoPlatformInjector) {
		logrus.WithError(err).WithField("key", name).Debugln("native press failed")
	}
	return e.emulate(name, func(kb *keybd_event.KeyBonding) error { return kb.Press() })
}

func (e *Emulator) Release(name string) error {
	name = normalizeKey(name)
	if err := platformRelease(name); err == nil {
		if down, verr := platformIsPressed(name); verr != nil || !down {
			return nil
		}
	} else if !errors.Is(err, errNoPlatformInjector) {
		logrus.WithError(err).WithField("key", name).Debugln("native release failed")
	}
	return e.emulate(name, func(kb *keybd_event.KeyBonding) error { return kb.Release() })
}

func (e *Emulator) IsPressed(name string) (bool, error) {
	down, err := platformIsPressed(normalizeKey(name))
	if errors.Is(err, errNoPlatformInjector) {
		return false, nil
	}
	return down, err
}

// SelfTest presses and releases the key, reporting whether the press
// became observable. Used at startup to warn about misconfigured
// push-to-talk keys before the first real utterance.
func (e *Emulator) SelfTest(name string) bool {
	if err := e.Press(name); err != nil {
		return false
	}
	down, _ := e.IsPressed(name)
	if err := e.Release(name); err != nil {
		logrus.WithError(err).WithField("key", name).Warnln("failed to release key after self test")
	}
	return down
}

func (e *Emulator) emulate(name string, action func(*keybd_event.KeyBonding) error) error {
	code, ok := keybdCodes[name]
	if !ok {
		return fmt.Errorf("%w: %q", errUnsupportedKey, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.kb == nil {
		kb, err := keybd_event.NewKeyBonding()
		if err != nil {
			return fmt.Errorf("failed to open key emulator; %w", err)
		}
		if runtime.GOOS == "linux" {
			// the freshly created uinput device needs time to register
			time.Sleep(2 * time.Second)
		}
		e.kb = &kb
	}

	e.kb.Clear()
	e.kb.SetKeys(code)
	return action(e.kb)
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
