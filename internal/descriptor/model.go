// Package descriptor models a multi-module application descriptor: the
// modules to deploy, the resources they consume, and the dependency
// declarations binding them together.
package descriptor

// SchemaVersion is the major version of the descriptor schema. Later schema
// versions unlock capabilities; behavior otherwise stays uniform.
type SchemaVersion int

// SupportsActiveFlag reports whether resources may be marked inactive.
func (v SchemaVersion) SupportsActiveFlag() bool {
	return v >= 3
}

// SupportsResourceDependencies reports whether resources themselves may
// declare required dependencies.
func (v SchemaVersion) SupportsResourceDependencies() bool {
	return v >= 3
}

// Descriptor is a parsed deployment descriptor.
type Descriptor struct {
	SchemaVersion SchemaVersion    `json:"schema_version"`
	ID            string           `json:"id"`
	Version       string           `json:"version"`
	Modules       []*Module        `json:"modules,omitempty"`
	Resources     []*Resource      `json:"resources,omitempty"`
	Parameters    map[string]any   `json:"parameters,omitempty"`
}

// Module is a deployable unit of the application.
type Module struct {
	Name                 string                `json:"name"`
	Type                 string                `json:"type,omitempty"`
	Properties           map[string]any        `json:"properties,omitempty"`
	Parameters           map[string]any        `json:"parameters,omitempty"`
	RequiredDependencies []*RequiredDependency `json:"requires,omitempty"`
}

// Resource is something a module consumes: a service, another application's
// published configuration, or plain property values.
type Resource struct {
	Name        string         `json:"name"`
	Type        string         `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	// Active distinguishes resources excluded from processing. Nil means
	// active; only schema version 3 descriptors may set it.
	Active               *bool                 `json:"active,omitempty"`
	RequiredDependencies []*RequiredDependency `json:"requires,omitempty"`
}

// IsActive reports whether the resource takes part in resolution.
func (r *Resource) IsActive() bool {
	return r.Active == nil || *r.Active
}

// RequiredDependency declares that a module or resource needs another
// module's or resource's provided values.
type RequiredDependency struct {
	Name string `json:"name"`
	// Group collects the expanded dependency's properties under a named
	// list property on the consumer.
	Group string `json:"group,omitempty"`
	// List marks the dependency as plural: it may expand to any number of
	// matched entries, each becoming its own resource.
	List       string         `json:"list,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// HasPlaceholders reports whether the dependency carries a group or list
// marker, i.e. its resolution materializes as a structured property.
func (d *RequiredDependency) HasPlaceholders() bool {
	return d.Group != "" || d.List != ""
}

// Copy returns a deep copy of the descriptor. Resolution mutates module and
// resource lists in place, so callers needing the pre-resolution view copy
// first.
func (d *Descriptor) Copy() *Descriptor {
	if d == nil {
		return nil
	}
	out := &Descriptor{
		SchemaVersion: d.SchemaVersion,
		ID:            d.ID,
		Version:       d.Version,
		Parameters:    copyMap(d.Parameters),
	}
	for _, m := range d.Modules {
		out.Modules = append(out.Modules, m.Copy())
	}
	for _, r := range d.Resources {
		out.Resources = append(out.Resources, r.Copy())
	}
	return out
}

// Copy returns a deep copy of the module.
func (m *Module) Copy() *Module {
	if m == nil {
		return nil
	}
	out := &Module{
		Name:       m.Name,
		Type:       m.Type,
		Properties: copyMap(m.Properties),
		Parameters: copyMap(m.Parameters),
	}
	for _, dep := range m.RequiredDependencies {
		out.RequiredDependencies = append(out.RequiredDependencies, dep.Copy())
	}
	return out
}

// Copy returns a deep copy of the resource.
func (r *Resource) Copy() *Resource {
	if r == nil {
		return nil
	}
	out := &Resource{
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		Properties:  copyMap(r.Properties),
		Parameters:  copyMap(r.Parameters),
	}
	if r.Active != nil {
		active := *r.Active
		out.Active = &active
	}
	for _, dep := range r.RequiredDependencies {
		out.RequiredDependencies = append(out.RequiredDependencies, dep.Copy())
	}
	return out
}

// Copy returns a deep copy of the dependency.
func (d *RequiredDependency) Copy() *RequiredDependency {
	if d == nil {
		return nil
	}
	return &RequiredDependency{
		Name:       d.Name,
		Group:      d.Group,
		List:       d.List,
		Properties: copyMap(d.Properties),
		Parameters: copyMap(d.Parameters),
	}
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
