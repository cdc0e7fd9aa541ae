package resolver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/configuration"
	"convoy/internal/configuration/registry"
	"convoy/internal/descriptor"
	dErrors "convoy/pkg/domain-errors"
)

var deployTarget = configuration.Target{Org: "acme", Space: "production"}

func testResolver(t *testing.T, reg *registry.Memory, opts ...Option) *ReferencesResolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReferencesResolver(reg, logger, opts...)
}

func publishEntry(reg *registry.Memory, providerID string, content map[string]any) configuration.Entry {
	return reg.Publish(configuration.Entry{
		ProviderID: providerID,
		Target:     deployTarget,
		Content:    content,
	})
}

func configResource(name, providerID string) *descriptor.Resource {
	return &descriptor.Resource{
		Name:       name,
		Type:       ResourceTypeConfiguration,
		Parameters: map[string]any{ParamProviderID: providerID},
	}
}

func TestResolveSingleMatchKeepsResourceName(t *testing.T) {
	reg := registry.NewMemory()
	publishEntry(reg, "other.app:backend", map[string]any{"url": "https://backend"})

	res := configResource("backend-config", "other.app:backend")
	res.Properties = map[string]any{"timeout": "30s", "url": "placeholder"}
	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{res},
	}

	result, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)

	require.Len(t, desc.Resources, 1)
	resolved := desc.Resources[0]
	assert.Equal(t, "backend-config", resolved.Name)
	// The entry's content wins on conflicting keys.
	assert.Equal(t, "https://backend", resolved.Properties["url"])
	assert.Equal(t, "30s", resolved.Properties["timeout"])
	// Filter-defining parameters must not leak into the resolved resource.
	assert.NotContains(t, resolved.Parameters, ParamProviderID)

	require.Len(t, desc.Modules[0].RequiredDependencies, 1)
	assert.Equal(t, "backend-config", desc.Modules[0].RequiredDependencies[0].Name)
	assert.True(t, result.ResolvedReferences["backend-config"].Active)
}

func TestResolveSingularAmbiguousMatchFails(t *testing.T) {
	reg := registry.NewMemory()
	publishEntry(reg, "other.app:backend", map[string]any{"url": "https://one"})
	publishEntry(reg, "other.app:backend", map[string]any{"url": "https://two"})

	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{configResource("backend-config", "other.app:backend")},
	}

	_, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeContent))
	assert.Equal(t, `Multiple configuration entries were found matching the filter specified in resource "backend-config"`, err.Error())
}

func TestResolveSingularNoMatchFails(t *testing.T) {
	reg := registry.NewMemory()

	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{configResource("backend-config", "other.app:backend")},
	}

	_, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeContent))
	assert.Equal(t, `No configuration entries were found matching the filter specified in resource "backend-config"`, err.Error())
}

func TestResolvePluralExpansionRewritesProperties(t *testing.T) {
	reg := registry.NewMemory()
	publishEntry(reg, "plugins.provider:plugin", map[string]any{"url": "https://p1"})
	publishEntry(reg, "plugins.provider:plugin", map[string]any{"url": "https://p2"})
	publishEntry(reg, "plugins.provider:plugin", map[string]any{"url": "https://p3"})

	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:       "web",
			Properties: map[string]any{"plugin-urls": "~{plugins/url}"},
			RequiredDependencies: []*descriptor.RequiredDependency{
				{Name: "plugins", List: "plugin-configs"},
			},
		}},
		Resources: []*descriptor.Resource{configResource("plugins", "plugins.provider:plugin")},
	}

	result, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)

	// Three expanded dependencies, index-suffixed.
	deps := desc.Modules[0].RequiredDependencies
	require.Len(t, deps, 3)
	assert.Equal(t, "plugins-1", deps[0].Name)
	assert.Equal(t, "plugins-2", deps[1].Name)
	assert.Equal(t, "plugins-3", deps[2].Name)

	// The list property names all resolved resources.
	assert.Equal(t, []any{"plugins-1", "plugins-2", "plugins-3"}, desc.Modules[0].Properties["plugin-configs"])

	// Properties referencing the original name follow the expansion.
	assert.Equal(t, []any{"~{plugins-1/url}", "~{plugins-2/url}", "~{plugins-3/url}"},
		desc.Modules[0].Properties["plugin-urls"])
	assert.Contains(t, result.ExpandedProperties, "plugin-urls")

	require.Len(t, desc.Resources, 3)
	assert.Equal(t, "https://p2", desc.Resources[1].Properties["url"])
}

func TestResolvePluralZeroMatchesSetsEmptyList(t *testing.T) {
	reg := registry.NewMemory()

	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name: "web",
			RequiredDependencies: []*descriptor.RequiredDependency{
				{Name: "plugins", List: "plugin-configs"},
			},
		}},
		Resources: []*descriptor.Resource{configResource("plugins", "plugins.provider:plugin")},
	}

	_, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)

	assert.Empty(t, desc.Modules[0].RequiredDependencies)
	// The list property is present even when nothing matched.
	assert.Equal(t, []any{}, desc.Modules[0].Properties["plugin-configs"])
	// The unresolvable reference resource is gone from the descriptor.
	assert.Empty(t, desc.Resources)
}

func TestResolveInactiveReference(t *testing.T) {
	reg := registry.NewMemory()
	// Registry content for the reference exists but must be ignored.
	publishEntry(reg, "other.app:backend", map[string]any{"url": "https://backend"})

	inactive := false
	offResource := configResource("backend-config", "other.app:backend")
	offResource.Active = &inactive

	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name: "web",
			RequiredDependencies: []*descriptor.RequiredDependency{
				{Name: "backend-config"},
				{Name: "backend-config", List: "backend-configs"},
			},
		}},
		Resources: []*descriptor.Resource{offResource},
	}

	result, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)

	// The singular dependency is dropped, the plural one expands to nothing
	// with its list property forced empty.
	assert.Empty(t, desc.Modules[0].RequiredDependencies)
	assert.Equal(t, []any{}, desc.Modules[0].Properties["backend-configs"])

	ref := result.ResolvedReferences["backend-config"]
	require.NotNil(t, ref)
	assert.False(t, ref.Active)
	assert.Empty(t, ref.Resources)

	// The inactive resource itself stays in the descriptor untouched.
	require.Len(t, desc.Resources, 1)
	assert.Equal(t, "backend-config", desc.Resources[0].Name)
}

func TestResolveExpandsResourceDependenciesOnV3(t *testing.T) {
	reg := registry.NewMemory()
	publishEntry(reg, "other.app:backend", map[string]any{"url": "https://backend"})

	consumer := &descriptor.Resource{
		Name:                 "service-binding",
		RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
	}
	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Resources: []*descriptor.Resource{
			configResource("backend-config", "other.app:backend"),
			consumer,
		},
	}

	_, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)

	require.Len(t, consumer.RequiredDependencies, 1)
	assert.Equal(t, "backend-config", consumer.RequiredDependencies[0].Name)
}

func TestResolveConcreteResourcesUntouched(t *testing.T) {
	reg := registry.NewMemory()

	plain := &descriptor.Resource{
		Name:       "database",
		Type:       "managed-service",
		Parameters: map[string]any{"service-plan": "small"},
	}
	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "database"}},
		}},
		Resources: []*descriptor.Resource{plain},
	}

	result, err := testResolver(t, reg).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)
	assert.Empty(t, result.ResolvedReferences)
	assert.Equal(t, plain, desc.Resources[0])
	assert.Equal(t, "database", desc.Modules[0].RequiredDependencies[0].Name)
}

func TestResolveUsesGlobalTargetFallback(t *testing.T) {
	reg := registry.NewMemory()
	global := configuration.Target{Org: "acme", Space: "global-config"}
	reg.Publish(configuration.Entry{
		ProviderID: "other.app:backend",
		Target:     global,
		Content:    map[string]any{"url": "https://global-backend"},
	})

	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{configResource("backend-config", "other.app:backend")},
	}

	_, err := testResolver(t, reg, WithGlobalTarget(global)).Resolve(context.Background(), desc, deployTarget)
	require.NoError(t, err)
	assert.Equal(t, "https://global-backend", desc.Resources[0].Properties["url"])
}

func TestResolveExplicitTargetIsStrict(t *testing.T) {
	reg := registry.NewMemory()
	global := configuration.Target{Org: "acme", Space: "global-config"}
	reg.Publish(configuration.Entry{
		ProviderID: "other.app:backend",
		Target:     global,
		Content:    map[string]any{"url": "https://global-backend"},
	})

	res := configResource("backend-config", "other.app:backend")
	res.Parameters[ParamTarget] = "acme staging"
	desc := &descriptor.Descriptor{
		SchemaVersion: 2,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
		Resources: []*descriptor.Resource{res},
	}

	_, err := testResolver(t, reg, WithGlobalTarget(global)).Resolve(context.Background(), desc, deployTarget)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeContent))
}
