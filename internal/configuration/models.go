// Package configuration holds the value types of the configuration registry:
// published entries, the filters that select them, and the subscriptions
// recording a consumer's interest in future changes.
package configuration

import (
	"encoding/json"
	"fmt"
	"strings"

	dErrors "convoy/pkg/domain-errors"
)

// ProviderNamespaceDefault is the namespace entries fall into when their
// provider did not set one. An empty filter namespace matches it.
const ProviderNamespaceDefault = "default"

// Target is the org/space scope an entry is published into.
type Target struct {
	Org   string `json:"org,omitempty"`
	Space string `json:"space,omitempty"`
}

// IsEmpty reports whether the target carries no scope at all.
func (t Target) IsEmpty() bool {
	return t.Org == "" && t.Space == ""
}

// ParseTarget parses a "org space" pair. A single token is taken as a bare
// space name.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, dErrors.New(dErrors.CodeValidation, "configuration target must not be empty")
	}
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		return Target{Space: parts[0]}, nil
	case 2:
		return Target{Org: parts[0], Space: parts[1]}, nil
	default:
		return Target{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("configuration target %q must be \"org space\"", s))
	}
}

// ComputeProviderID builds the provider id under which a deployment's
// provided dependency is published.
func ComputeProviderID(mtaID, providedName string) string {
	return mtaID + ":" + providedName
}

// Entry is a unit of configuration published into the registry.
type Entry struct {
	ID                int64          `json:"id,omitempty"`
	ProviderNamespace string         `json:"provider_namespace,omitempty"`
	ProviderID        string         `json:"provider_id"`
	ProviderVersion   string         `json:"provider_version,omitempty"`
	Target            Target         `json:"target"`
	SpaceID           string         `json:"space_id,omitempty"`
	Content           map[string]any `json:"content,omitempty"`
	// Visibility lists the targets allowed to consume the entry. Empty
	// means visible to everyone.
	Visibility []Target `json:"visibility,omitempty"`
}

// Filter selects configuration entries from the registry.
type Filter struct {
	ProviderNamespace string `json:"provider_nid,omitempty"`
	ProviderID        string `json:"provider_id,omitempty"`
	// ProviderVersion is a version requirement: an exact version or a
	// semantic-version range expression.
	ProviderVersion string  `json:"provider_version,omitempty"`
	Target          *Target `json:"target,omitempty"`
	// RequiredContent restricts matches to entries whose content carries
	// all the given key/value pairs.
	RequiredContent map[string]string `json:"content,omitempty"`
	// StrictTarget suppresses the global-target fallback when a scoped
	// lookup finds nothing.
	StrictTarget bool `json:"strict_target,omitempty"`
}

// Subscription records that an application consumes configuration matching a
// filter, so it can be notified when matching entries change later.
type Subscription struct {
	MtaID        string          `json:"mta_id"`
	SpaceID      string          `json:"space_id"`
	AppName      string          `json:"app_name"`
	ResourceName string          `json:"resource_name"`
	Filter       json.RawMessage `json:"filter"`
	// Module is a snapshot of the consuming module restricted to the one
	// dependency the subscription is about.
	Module             json.RawMessage `json:"module"`
	ResourceProperties json.RawMessage `json:"resource_properties,omitempty"`
	SchemaVersion      int             `json:"schema_version"`
}

// NewSubscription validates the identifying fields and serializes the filter
// and module snapshots.
func NewSubscription(mtaID, spaceID, appName, resourceName string, filter Filter, module any, resourceProperties map[string]any, schemaVersion int) (Subscription, error) {
	switch {
	case mtaID == "":
		return Subscription{}, dErrors.New(dErrors.CodeValidation, "subscription requires an mta id")
	case spaceID == "":
		return Subscription{}, dErrors.New(dErrors.CodeValidation, "subscription requires a space id")
	case appName == "":
		return Subscription{}, dErrors.New(dErrors.CodeValidation, "subscription requires an app name")
	case resourceName == "":
		return Subscription{}, dErrors.New(dErrors.CodeValidation, "subscription requires a resource name")
	}

	rawFilter, err := json.Marshal(filter)
	if err != nil {
		return Subscription{}, dErrors.Wrap(err, dErrors.CodeInternal, "serializing subscription filter")
	}
	rawModule, err := json.Marshal(module)
	if err != nil {
		return Subscription{}, dErrors.Wrap(err, dErrors.CodeInternal, "serializing subscription module")
	}
	var rawProperties json.RawMessage
	if resourceProperties != nil {
		rawProperties, err = json.Marshal(resourceProperties)
		if err != nil {
			return Subscription{}, dErrors.Wrap(err, dErrors.CodeInternal, "serializing subscription resource properties")
		}
	}

	return Subscription{
		MtaID:              mtaID,
		SpaceID:            spaceID,
		AppName:            appName,
		ResourceName:       resourceName,
		Filter:             rawFilter,
		Module:             rawModule,
		ResourceProperties: rawProperties,
		SchemaVersion:      schemaVersion,
	}, nil
}

// Key identifies the subscription: one per consuming app, deployment, and
// resource within a space.
func (s Subscription) Key() string {
	return strings.Join([]string{s.SpaceID, s.AppName, s.MtaID, s.ResourceName}, "/")
}
