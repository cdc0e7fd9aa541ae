package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaVersionCapabilities(t *testing.T) {
	assert.False(t, SchemaVersion(2).SupportsActiveFlag())
	assert.False(t, SchemaVersion(2).SupportsResourceDependencies())
	assert.True(t, SchemaVersion(3).SupportsActiveFlag())
	assert.True(t, SchemaVersion(3).SupportsResourceDependencies())
}

func TestResourceIsActiveDefaultsToTrue(t *testing.T) {
	r := &Resource{Name: "config"}
	assert.True(t, r.IsActive())

	inactive := false
	r.Active = &inactive
	assert.False(t, r.IsActive())
}

func TestDescriptorCopyIsDeep(t *testing.T) {
	active := true
	d := &Descriptor{
		SchemaVersion: 3,
		ID:            "com.example.app",
		Version:       "1.2.3",
		Modules: []*Module{{
			Name:       "web",
			Properties: map[string]any{"url": "~{config/url}"},
			RequiredDependencies: []*RequiredDependency{
				{Name: "config", List: "configs", Properties: map[string]any{"nested": map[string]any{"k": "v"}}},
			},
		}},
		Resources: []*Resource{{
			Name:       "config",
			Active:     &active,
			Parameters: map[string]any{"provider-id": "other:backend"},
		}},
	}

	cp := d.Copy()
	require.Equal(t, d, cp)

	cp.Modules[0].Properties["url"] = "changed"
	cp.Modules[0].RequiredDependencies[0].Properties["nested"].(map[string]any)["k"] = "changed"
	cp.Resources[0].Parameters["provider-id"] = "changed"
	*cp.Resources[0].Active = false

	assert.Equal(t, "~{config/url}", d.Modules[0].Properties["url"])
	assert.Equal(t, "v", d.Modules[0].RequiredDependencies[0].Properties["nested"].(map[string]any)["k"])
	assert.Equal(t, "other:backend", d.Resources[0].Parameters["provider-id"])
	assert.True(t, *d.Resources[0].Active)
}

func TestHasPlaceholders(t *testing.T) {
	assert.False(t, (&RequiredDependency{Name: "plain"}).HasPlaceholders())
	assert.True(t, (&RequiredDependency{Name: "grouped", Group: "g"}).HasPlaceholders())
	assert.True(t, (&RequiredDependency{Name: "plural", List: "l"}).HasPlaceholders())
}
