package services

import (
	"slices"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// ResolveOrder orders the requested entity types so that each comes after
// its dependencies, breaking ties by ascending priority.
//
// A dependency that is registered but not requested counts as satisfied.
// A dependency that is not registered can never be satisfied. When no
// remaining entity is ready (a cycle or a dangling dependency), the single
// lowest-priority remaining entity is scheduled next, so every requested
// entity appears exactly once and the loop always terminates.
//
// Unregistered requested types are dropped; callers validate first.
func (r *EntityRegistry) ResolveOrder(requested []domain.EntityType) []domain.EntityType {
	pending := make([]domain.EntityConfig, 0, len(requested))
	wanted := make(map[domain.EntityType]bool, len(requested))
	for _, t := range requested {
		cfg, ok := r.configs[t]
		if !ok || wanted[t] {
			continue
		}
		wanted[t] = true
		pending = append(pending, cfg)
	}
	byPriority := func(a, b domain.EntityConfig) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		if a.EntityType < b.EntityType {
			return -1
		}
		if a.EntityType > b.EntityType {
			return 1
		}
		return 0
	}
	slices.SortFunc(pending, byPriority)

	scheduled := make(map[domain.EntityType]bool, len(pending))
	satisfied := func(dep domain.EntityType) bool {
		if scheduled[dep] {
			return true
		}
		return r.Has(dep) && !wanted[dep]
	}

	order := make([]domain.EntityType, 0, len(pending))
	for len(pending) > 0 {
		var ready, blocked []domain.EntityConfig
		for _, cfg := range pending {
			if allSatisfied(cfg.Dependencies, satisfied) {
				ready = append(ready, cfg)
			} else {
				blocked = append(blocked, cfg)
			}
		}

		if len(ready) == 0 {
			// pending is priority-sorted, so blocked[0] is the lowest priority.
			next := blocked[0]
			logger.Warn("Unresolvable dependencies for %s (%v), falling back to priority order",
				next.EntityType, unsatisfied(next.Dependencies, satisfied))
			ready, blocked = blocked[:1], blocked[1:]
		}

		for _, cfg := range ready {
			order = append(order, cfg.EntityType)
			scheduled[cfg.EntityType] = true
		}
		pending = blocked
	}
	return order
}

func allSatisfied(deps []domain.EntityType, satisfied func(domain.EntityType) bool) bool {
	for _, d := range deps {
		if !satisfied(d) {
			return false
		}
	}
	return true
}

func unsatisfied(deps []domain.EntityType, satisfied func(domain.EntityType) bool) []domain.EntityType {
	var out []domain.EntityType
	for _, d := range deps {
		if !satisfied(d) {
			out = append(out, d)
		}
	}
	return out
}
