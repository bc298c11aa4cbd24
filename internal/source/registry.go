package source

import (
	"fmt"
	"strings"
)

// Registry holds the static list of known badge sources. Loaded once at
// startup, read-only afterwards.
type Registry struct {
	order       []string // canonical names in registration order
	byKey       map[string]Source
	manifestURL string // shared plugin/contributor manifest for vencord+equicord
}

// NewRegistry builds a registry from the given sources. Registration order
// is the merge order for aggregation results.
func NewRegistry(manifestURL string, sources ...Source) (*Registry, error) {
	r := &Registry{
		byKey:       make(map[string]Source, len(sources)),
		manifestURL: manifestURL,
	}
	for _, src := range sources {
		key := src.Key()
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate source: %s", src.Name)
		}
		if src.URL == nil {
			return nil, fmt.Errorf("source %s has no URL spec", src.Name)
		}
		r.byKey[key] = src
		r.order = append(r.order, src.Name)
	}
	return r, nil
}

// Resolve looks up a source by name, case-insensitively.
func (r *Registry) Resolve(name string) (Source, bool) {
	src, ok := r.byKey[strings.ToLower(name)]
	return src, ok
}

// Names returns the canonical source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// BulkNames returns the canonical names of bulk sources, in registration order.
func (r *Registry) BulkNames() []string {
	var out []string
	for _, name := range r.order {
		if src := r.byKey[strings.ToLower(name)]; src.Category == Bulk {
			out = append(out, name)
		}
	}
	return out
}

// ContributorManifestURL returns the shared plugin manifest URL used to
// derive contributor badges for the Vencord and Equicord sources.
func (r *Registry) ContributorManifestURL() string {
	return r.manifestURL
}

// Default source list. URLs can be overridden via a YAML source file,
// see Loader.
const defaultManifestURL = "https://raw.githubusercontent.com/Equicord/Equibored/refs/heads/main/plugins.json"

func defaultSources() []Source {
	return []Source{
		{
			Name:        "Vencord",
			Description: "Custom badges from Vencord Discord client",
			Category:    Bulk,
			URL:         Direct("https://badges.vencord.dev/badges.json"),
		},
		{
			Name:        "Equicord",
			Description: "Custom badges from Equicord Discord client",
			Category:    Bulk,
			URL:         Direct("https://raw.githubusercontent.com/Equicord/Equibored/refs/heads/main/badges.json"),
		},
		{
			Name:        "Nekocord",
			Description: "Custom badges from Nekocord Discord client",
			Category:    Bulk,
			URL:         Direct("https://nekocord.dev/assets/badges.json"),
		},
		{
			Name:        "ReviewDb",
			Description: "Badges from ReviewDB service",
			Category:    Bulk,
			URL:         Direct("https://manti.vendicated.dev/api/reviewdb/badges"),
		},
		{
			Name:        "Enmity",
			Description: "Custom badges from Enmity mobile Discord client",
			Category:    Live,
			URL: TwoStep{
				List: func(userID string) string {
					return "https://raw.githubusercontent.com/enmity-mod/badges/main/" + userID + ".json"
				},
				Item: func(itemID string) string {
					return "https://raw.githubusercontent.com/enmity-mod/badges/main/data/" + itemID + ".json"
				},
			},
		},
		{
			Name:        "Discord",
			Description: "Official Discord badges (staff, partner, hypesquad, etc.)",
			Category:    Live,
			URL: Templated(func(userID string) string {
				return "https://discord.com/api/v10/users/" + userID
			}),
		},
	}
}

// Defaults returns the built-in registry.
func Defaults() *Registry {
	r, err := NewRegistry(defaultManifestURL, defaultSources()...)
	if err != nil {
		// Built-in list is static, a failure here is a programming error.
		panic(err)
	}
	return r
}
