package memory

import "context"

// HealthCheck implements ports.HealthChecker for the in-memory store.
type HealthCheck struct {
	store *Store
}

// NewHealthCheck creates a health checker for store.
func NewHealthCheck(store *Store) *HealthCheck {
	return &HealthCheck{store: store}
}

// Ping always succeeds once the store exists.
func (h *HealthCheck) Ping(_ context.Context) error {
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "memory"
}
