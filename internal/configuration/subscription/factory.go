// Package subscription builds configuration subscription records out of a
// resolution pass, so consuming applications can be re-resolved when the
// entries they depend on change.
package subscription

import (
	"log/slog"

	"convoy/internal/configuration"
	"convoy/internal/configuration/metrics"
	"convoy/internal/configuration/resolver"
	"convoy/internal/descriptor"
)

type Option func(*Factory)

// Factory creates subscriptions for dependencies resolved against active
// configuration references. A subscription is the standing declaration of
// interest, one per (module, dependency) pair, independent of how many
// entries currently satisfy the filter.
type Factory struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewFactory(logger *slog.Logger, opts ...Option) *Factory {
	f := &Factory{logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithMetrics sets the metrics instance for the factory.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Factory) {
		f.metrics = m
	}
}

// Create builds subscriptions from the pre-resolution descriptor and the
// reference index of a completed resolution pass. Dependencies bound to
// inactive references never produce a subscription.
func (f *Factory) Create(desc *descriptor.Descriptor, resolved map[string]*resolver.ResolvedReference, spaceID string) ([]configuration.Subscription, error) {
	var subscriptions []configuration.Subscription
	for _, module := range desc.Modules {
		for _, dep := range module.RequiredDependencies {
			ref, ok := resolved[dep.Name]
			if !ok || !ref.Active {
				continue
			}

			sub, err := configuration.NewSubscription(
				desc.ID,
				spaceID,
				module.Name,
				dep.Name,
				ref.Filter,
				moduleSnapshot(module, dep),
				ref.Source.Properties,
				int(desc.SchemaVersion),
			)
			if err != nil {
				return nil, err
			}
			subscriptions = append(subscriptions, sub)
		}
	}

	if f.metrics != nil {
		f.metrics.IncrementSubscriptionsCreated(len(subscriptions))
	}
	f.logger.Info("configuration subscriptions created",
		slog.String("mta_id", desc.ID),
		slog.Int("count", len(subscriptions)))
	return subscriptions, nil
}

// moduleSnapshot copies the module restricted to the one dependency the
// subscription is about.
func moduleSnapshot(module *descriptor.Module, dep *descriptor.RequiredDependency) *descriptor.Module {
	snapshot := module.Copy()
	snapshot.RequiredDependencies = []*descriptor.RequiredDependency{dep.Copy()}
	return snapshot
}
