package mic

import "sync"

// KeyHold counts push-to-talk holds owned by live injections. The
// stuck-key watchdog treats a pressed key with a zero count as
// abandoned.
type KeyHold struct {
	mu sync.Mutex
	n  int
}

func (h *KeyHold) Inc() {
	h.mu.Lock()
	h.n++
	h.mu.Unlock()
}

func (h *KeyHold) Dec() {
	h.mu.Lock()
	if h.n > 0 {
		h.n--
	}
	h.mu.Unlock()
}

func (h *KeyHold) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}
