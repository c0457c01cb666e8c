//go:build windows

package input

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	user32               = syscall.NewLazyDLL("user32.dll")
	procSendInput        = user32.NewProc("SendInput")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

const (
	inputKeyboard  = 1
	keyEventfKeyUp = 0x0002
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// winInput mirrors the INPUT struct; the padding keeps it at the size
// the union gives it on amd64.
type winInput struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte
}

func sendKey(vk uint16, flags uint32) error {
	in := winInput{inputType: inputKeyboard}
	in.ki.wVk = vk
	in.ki.dwFlags = flags

	n, _, callErr := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n == 0 {
		return fmt.Errorf("SendInput rejected key event; %v", callErr)
	}
	return nil
}

func platformPress(name string) error {
	vk, ok := vkCode(name)
	if !ok {
		return fmt.Errorf("%w: %q", errUnsupportedKey, name)
	}
	return sendKey(vk, 0)
}

func platformRelease(name string) error {
	vk, ok := vkCode(name)
	if !ok {
		return fmt.Errorf("%w: %q", errUnsupportedKey, name)
	}
	return sendKey(vk, keyEventfKeyUp)
}

func platformIsPressed(name string) (bool, error) {
	vk, ok := vkCode(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", errUnsupportedKey, name)
	}
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return state&0x8000 != 0, nil
}
