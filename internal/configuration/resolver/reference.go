// Package resolver resolves a descriptor's configuration references against
// the configuration registry and expands the dependencies declared on them.
package resolver

import (
	"fmt"

	"convoy/internal/configuration"
	"convoy/internal/descriptor"
	dErrors "convoy/pkg/domain-errors"
)

// ResourceTypeConfiguration marks a resource as a configuration reference.
const ResourceTypeConfiguration = "configuration"

// Resource parameter keys that define the reference's filter. They steer the
// registry lookup and must not leak into the resolved resources.
const (
	ParamProviderID        = "provider-id"
	ParamProviderNamespace = "provider-nid"
	ParamVersion           = "version"
	ParamTarget            = "target"
	ParamFilter            = "filter"
)

var filterParamKeys = map[string]struct{}{
	ParamProviderID:        {},
	ParamProviderNamespace: {},
	ParamVersion:           {},
	ParamTarget:            {},
	ParamFilter:            {},
}

// FilterParser extracts configuration filters from resource parameters.
// Resources without a target parameter are scoped to the current deployment
// target.
type FilterParser struct {
	defaultTarget configuration.Target
}

func NewFilterParser(defaultTarget configuration.Target) *FilterParser {
	return &FilterParser{defaultTarget: defaultTarget}
}

// IsReference reports whether the resource is a configuration reference:
// either typed as one or carrying a provider-id parameter.
func (p *FilterParser) IsReference(resource *descriptor.Resource) bool {
	if resource.Type == ResourceTypeConfiguration {
		return true
	}
	_, ok := resource.Parameters[ParamProviderID]
	return ok
}

// Parse builds the filter declared by the resource's parameters.
func (p *FilterParser) Parse(resource *descriptor.Resource) (configuration.Filter, error) {
	filter := configuration.Filter{}

	if v, ok := resource.Parameters[ParamProviderID]; ok {
		filter.ProviderID = fmt.Sprint(v)
	}
	if v, ok := resource.Parameters[ParamProviderNamespace]; ok {
		filter.ProviderNamespace = fmt.Sprint(v)
	}
	if v, ok := resource.Parameters[ParamVersion]; ok {
		filter.ProviderVersion = fmt.Sprint(v)
	}

	target := p.defaultTarget
	if v, ok := resource.Parameters[ParamTarget]; ok {
		parsed, err := configuration.ParseTarget(fmt.Sprint(v))
		if err != nil {
			// A malformed target is a descriptor content problem, not a
			// request validation problem.
			return configuration.Filter{}, dErrors.WrapWithCode(err, dErrors.CodeContent,
				fmt.Sprintf("invalid target in resource %q", resource.Name))
		}
		target = parsed
		// An explicitly targeted reference does not silently widen to the
		// global configuration space.
		filter.StrictTarget = true
	}
	filter.Target = &target

	if v, ok := resource.Parameters[ParamFilter]; ok {
		content, ok := v.(map[string]any)
		if !ok {
			return configuration.Filter{}, dErrors.New(dErrors.CodeContent,
				fmt.Sprintf("the filter parameter of resource %q must be a map", resource.Name))
		}
		filter.RequiredContent = make(map[string]string, len(content))
		for key, value := range content {
			filter.RequiredContent[key] = fmt.Sprint(value)
		}
	}

	return filter, nil
}

// resolveReference materializes registry entries into concrete resources.
// A single match keeps the reference's own name; multiple matches get a
// 1-based index suffix. The entry's content overrides the reference's
// properties on conflicting keys, and filter-defining parameters are
// stripped. Structural metadata carries over unchanged.
func resolveReference(resource *descriptor.Resource, entries []configuration.Entry) []*descriptor.Resource {
	resolved := make([]*descriptor.Resource, 0, len(entries))
	for i, entry := range entries {
		r := resource.Copy()
		if len(entries) > 1 {
			r.Name = fmt.Sprintf("%s-%d", resource.Name, i+1)
		}
		r.Properties = overlayContent(resource.Properties, entry.Content)
		r.Parameters = stripFilterParams(resource.Parameters)
		resolved = append(resolved, r)
	}
	return resolved
}

func overlayContent(properties map[string]any, content map[string]any) map[string]any {
	merged := make(map[string]any, len(properties)+len(content))
	for k, v := range properties {
		merged[k] = v
	}
	for k, v := range content {
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func stripFilterParams(parameters map[string]any) map[string]any {
	if parameters == nil {
		return nil
	}
	stripped := make(map[string]any, len(parameters))
	for k, v := range parameters {
		if _, isFilterKey := filterParamKeys[k]; isFilterKey {
			continue
		}
		stripped[k] = v
	}
	if len(stripped) == 0 {
		return nil
	}
	return stripped
}
