// Package service runs the deployment-side resolution flow: resolve a
// descriptor's configuration references and derive the subscriptions the
// deployed applications need.
package service

import (
	"context"
	"log/slog"

	"convoy/internal/configuration"
	"convoy/internal/configuration/resolver"
	"convoy/internal/descriptor"
)

// Resolver resolves a descriptor's configuration references in place.
type Resolver interface {
	Resolve(ctx context.Context, desc *descriptor.Descriptor, target configuration.Target) (*resolver.Result, error)
}

// SubscriptionFactory derives subscriptions from a resolution pass.
type SubscriptionFactory interface {
	Create(desc *descriptor.Descriptor, resolved map[string]*resolver.ResolvedReference, spaceID string) ([]configuration.Subscription, error)
}

// Resolution is the outcome of one deployment resolution pass.
type Resolution struct {
	// Descriptor is the rewritten descriptor with references replaced by
	// concrete resources and dependencies expanded.
	Descriptor         *descriptor.Descriptor
	Subscriptions      []configuration.Subscription
	ExpandedProperties []string
}

// Service ties reference resolution and subscription creation together.
type Service struct {
	resolver      Resolver
	subscriptions SubscriptionFactory
	logger        *slog.Logger
}

func NewService(resolver Resolver, subscriptions SubscriptionFactory, logger *slog.Logger) *Service {
	return &Service{
		resolver:      resolver,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// ResolveDescriptor resolves the descriptor against the registry for the
// given target. The input descriptor is left untouched; subscriptions are
// derived from the pre-resolution view, since they record the declaration
// rather than its current expansion.
func (s *Service) ResolveDescriptor(ctx context.Context, desc *descriptor.Descriptor, target configuration.Target, spaceID string) (*Resolution, error) {
	working := desc.Copy()
	result, err := s.resolver.Resolve(ctx, working, target)
	if err != nil {
		return nil, err
	}

	subscriptions, err := s.subscriptions.Create(desc, result.ResolvedReferences, spaceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("descriptor resolved",
		slog.String("mta_id", desc.ID),
		slog.String("org", target.Org),
		slog.String("space", target.Space),
		slog.Int("subscriptions", len(subscriptions)))

	return &Resolution{
		Descriptor:         working,
		Subscriptions:      subscriptions,
		ExpandedProperties: result.ExpandedProperties,
	}, nil
}
