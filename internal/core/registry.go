package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Source reads the full dataset snapshot.
type Source interface {
	// Name identifies the source in logs, e.g. "parquet:dashfile.parquet".
	Name() string
	// Load reads every row. Failures should wrap ErrDataUnavailable.
	Load(ctx context.Context) (Table, error)
}

// SourceConfig carries the location settings a source factory may need.
type SourceConfig struct {
	Path  string // file path for parquet, csv and sqlite
	URL   string // connection string for postgres
	Table string // table name for sql sources
}

// SourceFactory builds a Source from configuration.
type SourceFactory func(cfg SourceConfig) (Source, error)

var (
	sources   = make(map[string]SourceFactory)
	sourcesMu sync.RWMutex
)

// sourceKey is the registry form of a source name. Lookups ignore case and
// surrounding space, so DATA_SOURCE=Parquet selects "parquet".
func sourceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RegisterSource adds a source factory under name.
// Panics if a source with the same name is already registered.
func RegisterSource(name string, factory SourceFactory) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()

	name = sourceKey(name)
	if _, exists := sources[name]; exists {
		panic(fmt.Sprintf("source already registered: %s", name))
	}
	sources[name] = factory
}

// NewSource builds the source registered under name.
func NewSource(name string, cfg SourceConfig) (Source, error) {
	sourcesMu.RLock()
	factory, ok := sources[sourceKey(name)]
	sourcesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			ErrUnknownSource, name, strings.Join(SourceNames(), ", "))
	}
	return factory(cfg)
}

// SourceNames returns the registered source names, sorted.
func SourceNames() []string {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unregisterSource removes a source. Used by tests.
func unregisterSource(name string) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	delete(sources, sourceKey(name))
}
