package services

import "sync"

// RunRegistry is the process-wide single-flight marker set. TryAcquire is
// the only way in: the check and the insert happen under one lock, so two
// callers can never both observe "not running". The registry is not
// persisted; a restart clears every marker.
type RunRegistry struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{running: make(map[string]struct{})}
}

// TryAcquire marks agentID as running. Returns false when a run already
// holds the slot.
func (registry *RunRegistry) TryAcquire(agentID string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.running[agentID]; exists {
		return false
	}
	registry.running[agentID] = struct{}{}
	return true
}

func (registry *RunRegistry) Release(agentID string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.running, agentID)
}

func (registry *RunRegistry) IsRunning(agentID string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	_, exists := registry.running[agentID]
	return exists
}

func (registry *RunRegistry) ActiveCount() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.running)
}
