package source

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// overrideFile is the YAML schema for the optional source override file.
// Only URLs of bulk sources and the contributor manifest can be overridden;
// per-user sources keep their built-in URL builders.
type overrideFile struct {
	ContributorManifest string            `yaml:"contributor_manifest,omitempty"`
	Sources             map[string]string `yaml:"sources,omitempty"`
}

// Loader builds the source registry, applying an optional override file.
type Loader struct {
	filePath string // empty = built-in defaults only
}

// NewLoader creates a registry loader. filePath may be empty.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load returns the registry with any file overrides applied.
func (l *Loader) Load() (*Registry, error) {
	sources := defaultSources()
	manifestURL := defaultManifestURL

	if l.filePath != "" {
		data, err := os.ReadFile(l.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}

		var overrides overrideFile
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("failed to parse source yaml: %w", err)
		}

		if overrides.ContributorManifest != "" {
			manifestURL = overrides.ContributorManifest
		}

		for name, url := range overrides.Sources {
			if err := applyOverride(sources, name, url); err != nil {
				return nil, err
			}
		}
	}

	return NewRegistry(manifestURL, sources...)
}

func applyOverride(sources []Source, name, url string) error {
	for i := range sources {
		if !strings.EqualFold(sources[i].Name, name) {
			continue
		}
		if _, ok := sources[i].URL.(Direct); !ok {
			return fmt.Errorf("source %s does not use a fixed URL and cannot be overridden", sources[i].Name)
		}
		sources[i].URL = Direct(url)
		return nil
	}
	return fmt.Errorf("unknown source in override file: %s", name)
}
