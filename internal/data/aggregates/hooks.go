package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/cqox-backend/internal/observability"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates aggregate hooks backed by observability metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveStoreOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncStoreConflict(strings.TrimSpace(name))
}
