package subscription

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"convoy/internal/configuration"
	"convoy/internal/configuration/resolver"
	"convoy/internal/descriptor"
	dErrors "convoy/pkg/domain-errors"
)

func testFactory(t *testing.T) *Factory {
	t.Helper()
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func activeReference(name string) *resolver.ResolvedReference {
	return &resolver.ResolvedReference{
		Filter: configuration.Filter{ProviderID: "other.app:" + name},
		Source: &descriptor.Resource{
			Name:       name,
			Properties: map[string]any{"exposed": true},
		},
		Active: true,
	}
}

func TestCreateOnePerModuleDependencyPair(t *testing.T) {
	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{
			{
				Name: "web",
				RequiredDependencies: []*descriptor.RequiredDependency{
					{Name: "backend-config"},
					{Name: "plugins", List: "plugin-configs"},
					{Name: "database"},
				},
			},
			{
				Name:                 "worker",
				RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
			},
		},
	}
	resolved := map[string]*resolver.ResolvedReference{
		"backend-config": activeReference("backend-config"),
		"plugins":        activeReference("plugins"),
	}

	subs, err := testFactory(t).Create(desc, resolved, "space-1")
	require.NoError(t, err)
	// "database" is no reference and produces nothing.
	require.Len(t, subs, 3)

	keys := make([]string, len(subs))
	for i, sub := range subs {
		keys[i] = sub.Key()
	}
	assert.ElementsMatch(t, []string{
		"space-1/web/com.example.app/backend-config",
		"space-1/web/com.example.app/plugins",
		"space-1/worker/com.example.app/backend-config",
	}, keys)
}

func TestCreateSnapshotsRestrictedToOneDependency(t *testing.T) {
	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:       "web",
			Properties: map[string]any{"memory": "512M"},
			RequiredDependencies: []*descriptor.RequiredDependency{
				{Name: "backend-config"},
				{Name: "plugins", List: "plugin-configs"},
			},
		}},
	}
	resolved := map[string]*resolver.ResolvedReference{
		"backend-config": activeReference("backend-config"),
	}

	subs, err := testFactory(t).Create(desc, resolved, "space-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)

	var module descriptor.Module
	require.NoError(t, json.Unmarshal(subs[0].Module, &module))
	assert.Equal(t, "web", module.Name)
	assert.Equal(t, "512M", module.Properties["memory"])
	require.Len(t, module.RequiredDependencies, 1)
	assert.Equal(t, "backend-config", module.RequiredDependencies[0].Name)

	var filter configuration.Filter
	require.NoError(t, json.Unmarshal(subs[0].Filter, &filter))
	assert.Equal(t, "other.app:backend-config", filter.ProviderID)

	assert.JSONEq(t, `{"exposed":true}`, string(subs[0].ResourceProperties))
	assert.Equal(t, 3, subs[0].SchemaVersion)
}

func TestCreateSkipsInactiveReferences(t *testing.T) {
	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
	}
	off := activeReference("backend-config")
	off.Active = false
	resolved := map[string]*resolver.ResolvedReference{"backend-config": off}

	subs, err := testFactory(t).Create(desc, resolved, "space-1")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestCreateRejectsMissingSpaceID(t *testing.T) {
	desc := &descriptor.Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Modules: []*descriptor.Module{{
			Name:                 "web",
			RequiredDependencies: []*descriptor.RequiredDependency{{Name: "backend-config"}},
		}},
	}
	resolved := map[string]*resolver.ResolvedReference{"backend-config": activeReference("backend-config")}

	_, err := testFactory(t).Create(desc, resolved, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
