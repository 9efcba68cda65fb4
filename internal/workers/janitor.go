// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/koalaroute/koalaroute/internal/logger"
	"github.com/koalaroute/koalaroute/internal/service"
)

// Janitor periodically prunes expired search entries from the registry so
// it cannot grow without bound between restarts.
type Janitor struct {
	registry *service.SearchRegistry
	interval time.Duration

	logger *logger.Logger
	now    func() time.Time
}

// NewJanitor constructs a janitor that prunes the registry every interval.
func NewJanitor(registry *service.SearchRegistry, interval time.Duration, log *logger.Logger) *Janitor {
	return &Janitor{
		registry: registry,
		interval: interval,
		logger:   log,
		now:      time.Now,
	}
}

// Run implements [Worker]. It blocks until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := j.registry.Prune(j.now()); pruned > 0 {
				j.logger.Debug().
					Int("pruned", pruned).
					Int("remaining", j.registry.Len()).
					Msg("janitor pruned expired searches")
			}
		}
	}
}
