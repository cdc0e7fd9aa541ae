package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"

	"convoy/internal/configuration"
)

// Memory is an in-memory configuration registry for the demo environment
// and for tests.
type Memory struct {
	mu      sync.RWMutex
	entries []configuration.Entry
	nextID  int64
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Publish stores an entry and returns it with its assigned id.
func (m *Memory) Publish(entry configuration.Entry) configuration.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, entry)
	return entry
}

// Find returns the entries matching the filter.
func (m *Memory) Find(_ context.Context, filter configuration.Filter) ([]configuration.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []configuration.Entry
	for _, entry := range m.entries {
		if matches(entry, filter) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func matches(entry configuration.Entry, filter configuration.Filter) bool {
	if filter.ProviderID != "" && entry.ProviderID != filter.ProviderID {
		return false
	}
	if !namespaceMatches(entry.ProviderNamespace, filter.ProviderNamespace) {
		return false
	}
	if !versionMatches(entry.ProviderVersion, filter.ProviderVersion) {
		return false
	}
	if filter.Target != nil && entry.Target != *filter.Target {
		return false
	}
	if !contentMatches(entry.Content, filter.RequiredContent) {
		return false
	}
	return visibleTo(entry, filter.Target)
}

// namespaceMatches treats an unset namespace and the default namespace as
// the same thing on both sides.
func namespaceMatches(entryNamespace, filterNamespace string) bool {
	if filterNamespace == "" {
		return true
	}
	return normalizeNamespace(entryNamespace) == normalizeNamespace(filterNamespace)
}

func normalizeNamespace(ns string) string {
	if ns == "" {
		return configuration.ProviderNamespaceDefault
	}
	return ns
}

// versionMatches checks the entry version against the filter's version
// requirement, which may be an exact version or a semantic-version range.
// An entry or requirement that does not parse simply does not match.
func versionMatches(entryVersion, requirement string) bool {
	if requirement == "" {
		return true
	}
	constraint, err := semver.NewConstraint(requirement)
	if err != nil {
		return false
	}
	version, err := semver.NewVersion(entryVersion)
	if err != nil {
		return false
	}
	return constraint.Check(version)
}

func contentMatches(content map[string]any, required map[string]string) bool {
	for key, want := range required {
		got, ok := content[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// visibleTo checks the entry's visibility list against the consumer's
// target. An empty list means the entry is visible to everyone; "*" in a
// visibility target matches any org or space.
func visibleTo(entry configuration.Entry, consumer *configuration.Target) bool {
	if len(entry.Visibility) == 0 || consumer == nil {
		return true
	}
	for _, v := range entry.Visibility {
		orgOK := v.Org == "*" || v.Org == consumer.Org
		spaceOK := v.Space == "*" || v.Space == consumer.Space
		if orgOK && spaceOK {
			return true
		}
	}
	return false
}
