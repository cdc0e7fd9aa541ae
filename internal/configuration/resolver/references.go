package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"convoy/internal/configuration"
	"convoy/internal/configuration/metrics"
	"convoy/internal/configuration/registry"
	"convoy/internal/configuration/resolver/tracer"
	"convoy/internal/descriptor"
	dErrors "convoy/pkg/domain-errors"
)

// ResolvedReference is the resolution of one configuration reference
// resource: the filter it declared, a snapshot of the resource as declared,
// and the concrete resources the matched entries turned into. Inactive
// references resolve to nothing and stay marked inactive.
type ResolvedReference struct {
	Filter    configuration.Filter
	Source    *descriptor.Resource
	Resources []*descriptor.Resource
	Active    bool
}

// ResolvedNames lists the names of the resolved resources.
func (r *ResolvedReference) ResolvedNames() []string {
	names := make([]string, 0, len(r.Resources))
	for _, res := range r.Resources {
		names = append(names, res.Name)
	}
	return names
}

// Result is the outcome of one resolution pass. The descriptor it was run
// against has been rewritten in place.
type Result struct {
	ResolvedReferences map[string]*ResolvedReference
	ExpandedProperties []string
}

type Option func(*ReferencesResolver)

// ReferencesResolver resolves every configuration reference in a descriptor
// and expands the dependencies declared against them.
//
// Resolution runs in two phases: first every reference resource is resolved
// independently into an index, then dependencies are expanded and properties
// rewritten against the completed index. Nothing reads the index before it
// is complete, so reference order cannot affect the outcome.
type ReferencesResolver struct {
	registry     registry.Gateway
	logger       *slog.Logger
	tracer       tracer.Tracer
	metrics      *metrics.Metrics
	globalTarget *configuration.Target
}

func NewReferencesResolver(reg registry.Gateway, logger *slog.Logger, opts ...Option) *ReferencesResolver {
	r := &ReferencesResolver{
		registry: reg,
		logger:   logger,
		tracer:   tracer.Noop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithTracer sets the tracer for the resolver.
func WithTracer(t tracer.Tracer) Option {
	return func(r *ReferencesResolver) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics sets the metrics instance for the resolver.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *ReferencesResolver) {
		r.metrics = m
	}
}

// WithGlobalTarget enables the global-target fallback for scoped lookups
// that match nothing.
func WithGlobalTarget(target configuration.Target) Option {
	return func(r *ReferencesResolver) {
		r.globalTarget = &target
	}
}

// Resolve resolves all configuration references of the descriptor against
// the registry, scoped to the given deployment target, and rewrites the
// descriptor in place: reference resources are replaced by their resolved
// resources, dependencies are expanded, and properties referencing expanded
// dependencies are rewritten.
func (r *ReferencesResolver) Resolve(ctx context.Context, desc *descriptor.Descriptor, target configuration.Target) (result *Result, err error) {
	start := time.Now()
	ctx, endSpan := r.tracer.StartSpan(ctx, "configuration.resolve",
		attribute.String("mta_id", desc.ID),
		attribute.String("org", target.Org),
		attribute.String("space", target.Space))
	defer func() {
		endSpan(err)
		if r.metrics != nil {
			r.metrics.IncrementResolutions()
			r.metrics.ObserveResolutionDuration(float64(time.Since(start).Milliseconds()))
			if err != nil {
				r.metrics.IncrementResolutionFailures()
			}
		}
	}()

	parser := NewFilterParser(target)
	resolved, err := r.resolveReferences(ctx, desc, parser)
	if err != nil {
		return nil, err
	}

	expansions := make(map[string][]string)
	for _, module := range desc.Modules {
		module.RequiredDependencies, err = expandDependencies(module.RequiredDependencies, &module.Properties, resolved, expansions)
		if err != nil {
			return nil, err
		}
	}

	replaceResolvedResources(desc, resolved)

	if desc.SchemaVersion.SupportsResourceDependencies() {
		for _, resource := range desc.Resources {
			resource.RequiredDependencies, err = expandDependencies(resource.RequiredDependencies, &resource.Properties, resolved, expansions)
			if err != nil {
				return nil, err
			}
		}
	}

	expandedProps := rewriteProperties(desc, expansions)

	r.logger.Info("configuration references resolved",
		slog.String("mta_id", desc.ID),
		slog.Int("references", len(resolved)),
		slog.Int("expanded_properties", len(expandedProps)))

	return &Result{
		ResolvedReferences: resolved,
		ExpandedProperties: expandedProps,
	}, nil
}

// resolveReferences is phase one: each reference resource is resolved on its
// own, with no pruning, into the reference index. Inactive references bind
// an empty resolution without touching the registry.
func (r *ReferencesResolver) resolveReferences(ctx context.Context, desc *descriptor.Descriptor, parser *FilterParser) (map[string]*ResolvedReference, error) {
	resolved := make(map[string]*ResolvedReference)
	for _, resource := range desc.Resources {
		if !parser.IsReference(resource) {
			continue
		}
		filter, err := parser.Parse(resource)
		if err != nil {
			return nil, err
		}

		ref := &ResolvedReference{Filter: filter, Source: resource.Copy()}
		if desc.SchemaVersion.SupportsActiveFlag() && !resource.IsActive() {
			resolved[resource.Name] = ref
			r.logger.Debug("skipping inactive configuration reference",
				slog.String("resource", resource.Name))
			continue
		}
		ref.Active = true

		entries, err := registry.FindEntries(ctx, r.registry, filter, r.globalTarget)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal,
				fmt.Sprintf("querying configuration entries for resource %q", resource.Name))
		}
		if r.metrics != nil {
			r.metrics.ObserveEntriesMatched(len(entries))
		}

		ref.Resources = resolveReference(resource, entries)
		resolved[resource.Name] = ref
	}
	return resolved, nil
}

// expandDependencies is phase two for one dependency list. Singular
// dependencies must resolve to exactly one resource; plural ones expand to a
// copy per resolved resource with their list property always set, even when
// empty. Dependencies bound to inactive references contribute nothing.
func expandDependencies(deps []*descriptor.RequiredDependency, ownerProperties *map[string]any, resolved map[string]*ResolvedReference, expansions map[string][]string) ([]*descriptor.RequiredDependency, error) {
	var out []*descriptor.RequiredDependency
	for _, dep := range deps {
		ref, ok := resolved[dep.Name]
		if !ok {
			out = append(out, dep)
			continue
		}

		if dep.List == "" {
			expanded, err := expandSingular(dep, ref)
			if err != nil {
				return nil, err
			}
			if expanded != nil {
				out = append(out, expanded)
			}
			continue
		}

		names := ref.ResolvedNames()
		for _, name := range names {
			copied := dep.Copy()
			copied.Name = name
			out = append(out, copied)
		}
		setListProperty(ownerProperties, dep.List, names)
		expansions[dep.Name] = names
	}
	return out, nil
}

func expandSingular(dep *descriptor.RequiredDependency, ref *ResolvedReference) (*descriptor.RequiredDependency, error) {
	if !ref.Active {
		// An off resource satisfies nothing and blocks nothing.
		return nil, nil
	}
	switch len(ref.Resources) {
	case 1:
		renamed := dep.Copy()
		renamed.Name = ref.Resources[0].Name
		return renamed, nil
	case 0:
		return nil, dErrors.New(dErrors.CodeContent,
			fmt.Sprintf("No configuration entries were found matching the filter specified in resource %q", dep.Name))
	default:
		return nil, dErrors.New(dErrors.CodeContent,
			fmt.Sprintf("Multiple configuration entries were found matching the filter specified in resource %q", dep.Name))
	}
}

func setListProperty(properties *map[string]any, listName string, names []string) {
	list := make([]any, len(names))
	for i, name := range names {
		list[i] = name
	}
	if *properties == nil {
		*properties = make(map[string]any, 1)
	}
	(*properties)[listName] = list
}

// replaceResolvedResources swaps each active reference resource for the
// concrete resources it resolved into, preserving list order. Inactive
// references and plain resources stay as declared.
func replaceResolvedResources(desc *descriptor.Descriptor, resolved map[string]*ResolvedReference) {
	var resources []*descriptor.Resource
	for _, resource := range desc.Resources {
		if ref, ok := resolved[resource.Name]; ok && ref.Active {
			resources = append(resources, ref.Resources...)
			continue
		}
		resources = append(resources, resource)
	}
	desc.Resources = resources
}

// rewriteProperties applies every recorded plural expansion to all module
// and resource properties, strictly after the reference index is complete.
func rewriteProperties(desc *descriptor.Descriptor, expansions map[string][]string) []string {
	var expandedProps []string
	for originalName, names := range expansions {
		expander := NewPropertiesExpander(originalName, names)
		for _, module := range desc.Modules {
			module.Properties = expander.Expand(module.Properties)
		}
		for _, resource := range desc.Resources {
			resource.Properties = expander.Expand(resource.Properties)
		}
		expandedProps = append(expandedProps, expander.ExpandedProperties()...)
	}
	return expandedProps
}
