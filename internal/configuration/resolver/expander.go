package resolver

import (
	"fmt"
	"regexp"
	"sort"
)

// PropertiesExpander rewrites `~{name/...}` style references to an original
// dependency name into references to its expanded names. A single expanded
// name rewrites in place; multiple names turn the value into a list with one
// rewritten copy each. Rewritten references no longer match the pattern, so
// applying the same expansion twice changes nothing.
type PropertiesExpander struct {
	originalName  string
	expandedNames []string
	pattern       *regexp.Regexp
	expandedProps map[string]struct{}
}

// NewPropertiesExpander builds an expander replacing references to
// originalName with expandedNames.
func NewPropertiesExpander(originalName string, expandedNames []string) *PropertiesExpander {
	// The name must be followed by '/' or '}' so that expanded names like
	// "name-1" do not match again.
	pattern := regexp.MustCompile(`~\{` + regexp.QuoteMeta(originalName) + `([/}])`)
	return &PropertiesExpander{
		originalName:  originalName,
		expandedNames: expandedNames,
		pattern:       pattern,
		expandedProps: make(map[string]struct{}),
	}
}

// Expand rewrites the references in the given properties and returns the
// result. The input map is not modified.
func (e *PropertiesExpander) Expand(properties map[string]any) map[string]any {
	if properties == nil {
		return nil
	}
	out := make(map[string]any, len(properties))
	for key, value := range properties {
		expanded, changed := e.expandValue(value)
		out[key] = expanded
		if changed {
			e.expandedProps[key] = struct{}{}
		}
	}
	return out
}

// ExpandedProperties lists the top-level property names whose values were
// rewritten, across all Expand calls, sorted.
func (e *PropertiesExpander) ExpandedProperties() []string {
	names := make([]string, 0, len(e.expandedProps))
	for name := range e.expandedProps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *PropertiesExpander) expandValue(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return e.expandString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		changed := false
		for key, item := range v {
			expanded, c := e.expandValue(item)
			out[key] = expanded
			changed = changed || c
		}
		return out, changed
	case []any:
		return e.expandSlice(v)
	default:
		return value, false
	}
}

func (e *PropertiesExpander) expandString(s string) (any, bool) {
	if !e.pattern.MatchString(s) {
		return s, false
	}
	if len(e.expandedNames) == 1 {
		return e.rename(s, e.expandedNames[0]), true
	}
	out := make([]any, 0, len(e.expandedNames))
	for _, name := range e.expandedNames {
		out = append(out, e.rename(s, name))
	}
	return out, true
}

// expandSlice expands each element; string elements expanding into lists are
// flattened into the parent so the result stays one level deep.
func (e *PropertiesExpander) expandSlice(items []any) (any, bool) {
	out := make([]any, 0, len(items))
	changed := false
	for _, item := range items {
		expanded, c := e.expandValue(item)
		changed = changed || c
		if nested, ok := expanded.([]any); ok && c {
			out = append(out, nested...)
			continue
		}
		out = append(out, expanded)
	}
	return out, changed
}

func (e *PropertiesExpander) rename(s, newName string) string {
	return e.pattern.ReplaceAllString(s, fmt.Sprintf("~{%s$1", newName))
}
