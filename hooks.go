package fieldmatch

import (
	"sync"

	"github.com/agentstation/fieldmatch/pkg/engine"
)

// Hook function types for run events
type (
	// MatchHook is called once for every emitted match, in target order
	MatchHook func(m engine.MatchResult)

	// WarningHook is called for every warning raised during a run
	WarningHook func(warning string)
)

// hooks manages event callbacks for completed runs
type hooks struct {
	mu        sync.RWMutex
	onMatch   []MatchHook
	onWarning []WarningHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnMatch registers a callback for emitted matches
func (h *hooks) OnMatch(fn MatchHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMatch = append(h.onMatch, fn)
}

// OnWarning registers a callback for run warnings
func (h *hooks) OnWarning(fn WarningHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onWarning = append(h.onWarning, fn)
}

// trigger replays a finished run through the registered hooks
func (h *hooks) trigger(res *engine.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, m := range res.Matches {
		for _, hook := range h.onMatch {
			hook(m)
		}
	}
	for _, w := range res.Warnings {
		for _, hook := range h.onWarning {
			hook(w)
		}
	}
}
