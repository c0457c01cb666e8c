package voice

import (
	"os/exec"
	"sync"
)

// Engine is one live local-synthesis process.
type Engine struct {
	cmd *exec.Cmd
}

// Dispose kills the underlying process. Safe on finished engines.
func (e *Engine) Dispose() {
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
}

// Engines tracks every live local engine so a global stop can reach
// them. Registration and removal are idempotent.
type Engines struct {
	mu   sync.Mutex
	live map[*Engine]struct{}
}

func NewEngines() *Engines {
	return &Engines{live: make(map[*Engine]struct{})}
}

func (e *Engines) add(eng *Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live[eng] = struct{}{}
}

func (e *Engines) remove(eng *Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.live, eng)
}

// Count returns the number of live engines.
func (e *Engines) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

// DisposeAll kills every live engine and clears the registry.
func (e *Engines) DisposeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for eng := range e.live {
		eng.Dispose()
		delete(e.live, eng)
	}
}
