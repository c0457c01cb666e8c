package input

import (
	"strconv"

	"github.com/micmonay/keybd_event"
)

// vkCodes maps key names to Windows virtual-key codes. The codes drive
// both SendInput and RegisterHotKey, so the map is shared even though
// only the windows files consume it.
var vkCodes = map[string]uint16{
	"backspace": 0x08,
	"tab":       0x09,
	"enter":     0x0D,
	"shift":     0x10,
	"ctrl":      0x11,
	"alt":       0x12,
	"pause":     0x13,
	"capslock":  0x14,
	"esc":       0x1B,
	"space":     0x20,
	"pageup":    0x21,
	"pagedown":  0x22,
	"end":       0x23,
	"home":      0x24,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"insert":    0x2D,
	"delete":    0x2E,
}

// keybdCodes maps the same names to the emulator's scan codes. The
// emulator covers fewer keys; modifiers held alone are native-only.
var keybdCodes = map[string]int{
	"enter": keybd_event.VK_ENTER,
	"esc":   keybd_event.VK_ESC,
	"space": keybd_event.VK_SPACE,
}

func init() {
	for i := 0; i < 10; i++ {
		vkCodes[string(rune('0'+i))] = uint16(0x30 + i)
	}
	for i := 0; i < 26; i++ {
		vkCodes[string(rune('a'+i))] = uint16(0x41 + i)
	}
	for i := 1; i <= 12; i++ {
		vkCodes[fKeyName(i)] = uint16(0x70 + i - 1)
	}

	digits := []int{
		keybd_event.VK_0, keybd_event.VK_1, keybd_event.VK_2, keybd_event.VK_3,
		keybd_event.VK_4, keybd_event.VK_5, keybd_event.VK_6, keybd_event.VK_7,
		keybd_event.VK_8, keybd_event.VK_9,
	}
	for i, code := range digits {
		keybdCodes[string(rune('0'+i))] = code
	}
	letters := []int{
		keybd_event.VK_A, keybd_event.VK_B, keybd_event.VK_C, keybd_event.VK_D,
		keybd_event.VK_E, keybd_event.VK_F, keybd_event.VK_G, keybd_event.VK_H,
		keybd_event.VK_I, keybd_event.VK_J, keybd_event.VK_K, keybd_event.VK_L,
		keybd_event.VK_M, keybd_event.VK_N, keybd_event.VK_O, keybd_event.VK_P,
		keybd_event.VK_Q, keybd_event.VK_R, keybd_event.VK_S, keybd_event.VK_T,
		keybd_event.VK_U, keybd_event.VK_V, keybd_event.VK_W, keybd_event.VK_X,
		keybd_event.VK_Y, keybd_event.VK_Z,
	}
	for i, code := range letters {
		keybdCodes[string(rune('a'+i))] = code
	}
	fkeys := []int{
		keybd_event.VK_F1, keybd_event.VK_F2, keybd_event.VK_F3, keybd_event.VK_F4,
		keybd_event.VK_F5, keybd_event.VK_F6, keybd_event.VK_F7, keybd_event.VK_F8,
		keybd_event.VK_F9, keybd_event.VK_F10, keybd_event.VK_F11, keybd_event.VK_F12,
	}
	for i, code := range fkeys {
		keybdCodes[fKeyName(i+1)] = code
	}
}

func fKeyName(n int) string {
	return "f" + strconv.Itoa(n)
}

func vkCode(name string) (uint16, bool) {
	code, ok := vkCodes[normalizeKey(name)]
	return code, ok
}
