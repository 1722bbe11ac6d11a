package introspect

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Source)
)

// Register adds a source factory under a URL scheme.
// Called by source implementations in their init() functions.
func Register(scheme string, factory func(*slog.Logger) Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = factory
}

// Get retrieves a source factory by scheme.
func Get(scheme string) (func(*slog.Logger) Source, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[scheme]
	return f, ok
}

// List returns all registered schemes, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	schemes := make([]string, 0, len(registry))
	for scheme := range registry {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// UnknownSchemeError is returned when no source handles a URL scheme.
type UnknownSchemeError struct {
	Scheme    string
	Available []string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("no introspection source for scheme %q, available: %s",
		e.Scheme, strings.Join(e.Available, ", "))
}
