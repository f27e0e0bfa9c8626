package internal

import (
	"context"
	"sync"
)

// ModelRegistry holds the list of model identifiers available at the
// inference endpoint. It is refreshed once at process start and read-only to
// the rest of the application. Observers registered with OnReady fire on the
// transition to "ready with at least one model".
type ModelRegistry struct {
	mu        sync.Mutex
	transport Transport
	models    []string
	ready     bool
	observers []func(models []string)
}

// NewModelRegistry creates an empty, not-ready registry.
func NewModelRegistry(transport Transport) *ModelRegistry {
	return &ModelRegistry{transport: transport}
}

// Refresh queries the endpoint for available models. Failures are caught and
// surfaced as "no models" rather than propagated; the registry still becomes
// ready so callers can stop waiting.
func (r *ModelRegistry) Refresh(ctx context.Context) {
	models, err := r.transport.ListModels(ctx)
	if err != nil {
		LogWarn("Failed to list models, continuing without: %v", err)
		models = nil
	}

	r.mu.Lock()
	r.models = models
	r.ready = true
	var notify []func([]string)
	if len(models) > 0 {
		notify = append(notify, r.observers...)
	}
	snapshot := append([]string(nil), models...)
	r.mu.Unlock()

	for _, fn := range notify {
		fn(snapshot)
	}
}

// Ready reports whether the initial refresh has completed.
func (r *ModelRegistry) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Models returns a copy of the available model identifiers.
func (r *ModelRegistry) Models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.models...)
}

// Has reports whether the given identifier is in the registry.
func (r *ModelRegistry) Has(model string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.models {
		if m == model {
			return true
		}
	}
	return false
}

// OnReady registers an observer for the not-ready to ready-with-models
// transition. If the registry is already ready with at least one model, the
// observer fires immediately.
func (r *ModelRegistry) OnReady(fn func(models []string)) {
	r.mu.Lock()
	fireNow := r.ready && len(r.models) > 0
	snapshot := append([]string(nil), r.models...)
	if !fireNow {
		r.observers = append(r.observers, fn)
	}
	r.mu.Unlock()

	if fireNow {
		fn(snapshot)
	}
}
