// Package sources describes where event listings come from.
package sources

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
)

//go:embed sources.yaml
var defaultSources []byte

// Kind classifies a source by how close it is to the event organizer.
type Kind string

// Source kinds.
const (
	KindVenue      Kind = "venue"
	KindPrimary    Kind = "primary"
	KindAggregator Kind = "aggregator"
	KindUnknown    Kind = "unknown"
)

// Source is one registry entry.
type Source struct {
	Name        string `yaml:"name"`
	Kind        Kind   `yaml:"kind"`
	Description string `yaml:"description,omitempty"`
}

type file struct {
	Sources []Source `yaml:"sources"`
}

// Registry maps source tags to their kind. Lookups are case-insensitive.
type Registry struct {
	byName map[string]Source
}

// Default returns the registry bundled with the binary.
func Default() (*Registry, error) {
	return Parse(defaultSources)
}

// Load reads a registry from a YAML file. An empty path returns the default registry.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	return Parse(b)
}

// Parse builds a registry from YAML.
func Parse(b []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	r := &Registry{byName: make(map[string]Source, len(f.Sources))}

	for _, s := range f.Sources {
		name := key(s.Name)
		if name == "" {
			return nil, fmt.Errorf("source with empty name: %w", apperrors.ErrInvalidInput)
		}

		switch s.Kind {
		case KindVenue, KindPrimary, KindAggregator:
		default:
			return nil, fmt.Errorf("source %q has kind %q: %w", s.Name, s.Kind, apperrors.ErrInvalidInput)
		}

		r.byName[name] = s
	}

	return r, nil
}

// Kind returns the kind of a source tag, or KindUnknown.
func (r *Registry) Kind(src domain.Source) Kind {
	if r == nil {
		return KindUnknown
	}

	if s, ok := r.byName[key(string(src))]; ok {
		return s.Kind
	}

	return KindUnknown
}

// IsAggregator reports whether the source republishes other organizers' events.
func (r *Registry) IsAggregator(src domain.Source) bool {
	return r.Kind(src) == KindAggregator
}

// Names returns the names of all sources of the given kind, sorted.
func (r *Registry) Names(kind Kind) []string {
	if r == nil {
		return nil
	}

	var names []string

	for _, s := range r.byName {
		if s.Kind == kind {
			names = append(names, s.Name)
		}
	}

	sort.Strings(names)

	return names
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.byName)
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
