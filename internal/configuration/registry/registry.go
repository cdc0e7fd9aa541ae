// Package registry gives access to the configuration registry that
// deployments publish entries into and resolve references against.
package registry

import (
	"context"

	"convoy/internal/configuration"
)

// Gateway is the port to the configuration registry. The filter's target,
// when set, scopes the lookup; matching is defined by the registry.
type Gateway interface {
	Find(ctx context.Context, filter configuration.Filter) ([]configuration.Entry, error)
}

// FindEntries looks up entries for the filter and, when the scoped lookup
// finds nothing, falls back to the global configuration target. The fallback
// is skipped for strict-target filters and when no global target is
// configured.
func FindEntries(ctx context.Context, g Gateway, filter configuration.Filter, global *configuration.Target) ([]configuration.Entry, error) {
	entries, err := g.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 || filter.StrictTarget || global == nil {
		return entries, nil
	}
	if filter.Target != nil && *filter.Target == *global {
		return entries, nil
	}

	fallback := filter
	target := *global
	fallback.Target = &target
	return g.Find(ctx, fallback)
}
