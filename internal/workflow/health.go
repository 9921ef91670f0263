package workflow

import (
	"context"
	"fmt"

	"storyreel/internal/stage"
)

// HealthChecks polls every registered stage, in pipeline order.
func (m *Manager) HealthChecks(ctx context.Context) []stage.Health {
	out := make([]stage.Health, 0, len(m.statusOrder))
	for _, status := range m.statusOrder {
		out = append(out, m.stages[status].handler.HealthCheck(ctx))
	}
	return out
}

// Ready returns an error naming the first stage that is not ready to run.
// Used as a preflight before starting the worker loop.
func (m *Manager) Ready(ctx context.Context) error {
	for _, health := range m.HealthChecks(ctx) {
		if !health.Ready {
			return fmt.Errorf("stage %s not ready: %s", health.Name, health.Detail)
		}
	}
	return nil
}
