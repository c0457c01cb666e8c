//go:build windows

package input

import (
	"context"
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
)

var (
	procRegisterHotKey   = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey = user32.NewProc("UnregisterHotKey")
	procPeekMessage      = user32.NewProc("PeekMessageW")
)

const (
	wmHotkey = 0x0312
	pmRemove = 0x0001
)

type winMsg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// ListenHotkeys registers the bindings and dispatches their handlers
// until ctx is done. RegisterHotKey binds hotkeys to the calling
// thread, so the whole loop is pinned to one OS thread.
func ListenHotkeys(ctx context.Context, bindings []Binding) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	byID := make(map[int]Binding, len(bindings))
	for _, b := range bindings {
		mods, vk, err := ParseHotkey(b.Spec)
		if err != nil {
			return err
		}
		ok, _, callErr := procRegisterHotKey.Call(0, uintptr(b.ID), uintptr(mods), uintptr(vk))
		if ok == 0 {
			return fmt.Errorf("failed to register hotkey %q; %v", b.Spec, callErr)
		}
		byID[b.ID] = b
	}
	defer func() {
		for id := range byID {
			procUnregisterHotKey.Call(0, uintptr(id))
		}
	}()

	var m winMsg
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		got, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if got == 0 {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if m.message != wmHotkey {
			continue
		}
		if b, ok := byID[int(m.wParam)]; ok {
			b.Handler()
		} else {
			logrus.WithField("id", m.wParam).Debugln("hotkey message with unknown id")
		}
	}
}
