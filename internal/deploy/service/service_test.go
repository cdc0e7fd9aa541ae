package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/configuration"
	"convoy/internal/configuration/registry"
	"convoy/internal/configuration/resolver"
	"convoy/internal/configuration/subscription"
	"convoy/internal/descriptor"
)

func testService(t *testing.T, reg *registry.Memory) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(
		resolver.NewReferencesResolver(reg, logger),
		subscription.NewFactory(logger),
		logger,
	)
}

func TestResolveDescriptorLeavesInputUntouched(t *testing.T) {
	reg := registry.NewMemory()
	target := configuration.Target{Org: "acme", Space: "production"}
	reg.Publish(configuration.Entry{
		ProviderID: "other.app:backend",
		Target:     target,
		Content:    map[string]any{"url": "https://backend"},
	})

	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{{
			Name:       "backend-config",
			Type:       resolver.ResourceTypeConfiguration,
			Parameters: map[string]any{resolver.ParamProviderID: "other.app:backend"},
		}},
	}
	original := desc.Copy()

	resolution, err := testService(t, reg).ResolveDescriptor(context.Background(), desc, target, "space-1")
	require.NoError(t, err)

	// The caller's descriptor still shows the declaration.
	assert.Equal(t, original, desc)

	// The resolved view carries the entry content.
	require.Len(t, resolution.Descriptor.Resources, 1)
	assert.Equal(t, "https://backend", resolution.Descriptor.Resources[0].Properties["url"])

	require.Len(t, resolution.Subscriptions, 1)
	assert.Equal(t, "space-1/web/com.example.app/backend-config", resolution.Subscriptions[0].Key())
}

func TestResolveDescriptorPropagatesContentErrors(t *testing.T) {
	reg := registry.NewMemory()
	target := configuration.Target{Org: "acme", Space: "production"}

	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{{
			Name:       "backend-config",
			Type:       resolver.ResourceTypeConfiguration,
			Parameters: map[string]any{resolver.ParamProviderID: "other.app:backend"},
		}},
	}

	_, err := testService(t, reg).ResolveDescriptor(context.Background(), desc, target, "space-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend-config")
}
