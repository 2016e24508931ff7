package crawler

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is one scholarship notice board.
type Source struct {
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	MaxItems int      `yaml:"max_items,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty"` // any match discards the announcement
	Enabled  *bool    `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the source should be crawled. Sources are
// enabled unless explicitly disabled.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads and validates a YAML sources file.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes a sources document and returns the enabled sources.
func ParseSources(data []byte) ([]Source, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sources: %w", err)
	}

	seen := make(map[string]bool, len(f.Sources))
	out := make([]Source, 0, len(f.Sources))
	for i, s := range f.Sources {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("source %q: duplicate name", s.Name)
		}
		seen[s.Name] = true

		u, err := url.Parse(strings.TrimSpace(s.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("source %q: url must be an absolute http(s) URL", s.Name)
		}
		s.URL = u.String()
		if s.MaxItems < 0 {
			return nil, fmt.Errorf("source %q: max_items must not be negative", s.Name)
		}
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out, nil
}
