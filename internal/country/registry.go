// Package country resolves country names to ISO 3166-1 alpha-3 codes.
package country

import (
	"errors"
	"fmt"
	"sync"

	"github.com/biter777/countries"
)

var (
	// ErrUnknown is returned when no country has the given name.
	ErrUnknown = errors.New("unknown country")

	// ErrAmbiguous is returned when a name maps to more than one code.
	ErrAmbiguous = errors.New("ambiguous country name")
)

// Entry is one name/code pair.
type Entry struct {
	Name   string
	Alpha3 string
}

// Registry is an exact-name lookup table. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	codes     map[string]string
	ambiguous map[string]struct{}
}

// NewRegistry builds a registry from entries. A name that appears with two
// different codes is ambiguous and never resolves.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{
		codes:     make(map[string]string, len(entries)),
		ambiguous: make(map[string]struct{}),
	}
	for _, e := range entries {
		if e.Name == "" || e.Alpha3 == "" {
			continue
		}
		if prev, ok := r.codes[e.Name]; ok && prev != e.Alpha3 {
			r.ambiguous[e.Name] = struct{}{}
			continue
		}
		r.codes[e.Name] = e.Alpha3
	}
	for name := range r.ambiguous {
		delete(r.codes, name)
	}
	return r
}

// Lookup returns the alpha-3 code for name. Matching is exact.
func (r *Registry) Lookup(name string) (string, error) {
	if _, ok := r.ambiguous[name]; ok {
		return "", fmt.Errorf("%w: %q", ErrAmbiguous, name)
	}
	code, ok := r.codes[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return code, nil
}

// Len returns the number of resolvable names.
func (r *Registry) Len() int {
	return len(r.codes)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the ISO 3166 country list, keyed
// by English short name.
func Default() *Registry {
	defaultOnce.Do(func() {
		all := countries.All()
		entries := make([]Entry, 0, len(all))
		for _, c := range all {
			entries = append(entries, Entry{Name: c.String(), Alpha3: c.Alpha3()})
		}
		defaultRegistry = NewRegistry(entries)
	})
	return defaultRegistry
}
