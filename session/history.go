package session

import "sync"

// historySlots is how many past utterances the replay hotkeys can
// reach.
const historySlots = 10

// History is a bounded most-recent-first list of spoken texts.
// Speaking the same text twice in a row keeps a single entry.
type History struct {
	mu      sync.Mutex
	entries []string
}

func NewHistory() *History {
	return &History{}
}

// Add puts text at slot 1, evicting the oldest entry when full. A
// duplicate of the newest entry is a no-op so hammering the same line
// does not flush the rest of the history.
func (h *History) Add(text string) {
	if text == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) > 0 && h.entries[0] == text {
		return
	}
	h.entries = append([]string{text}, h.entries...)
	if len(h.entries) > historySlots {
		h.entries = h.entries[:historySlots]
	}
}

// Get returns the text at slot (1 is newest, historySlots is oldest).
func (h *History) Get(slot int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if slot < 1 || slot > len(h.entries) {
		return "", false
	}
	return h.entries[slot-1], true
}

// Slots returns a copy of the history, newest first.
func (h *History) Slots() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// SlotForDigit maps a replay hotkey digit to a history slot. Digit
// keys run 1..9 then 0, so 0 addresses the tenth slot.
func SlotForDigit(digit int) int {
	if digit == 0 {
		return historySlots
	}
	return digit
}
