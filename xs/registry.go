package xs

import (
	"sort"
	"sync"

	"github.com/wippyai/perlbind/errors"
)

// Export is one registered native entry point.
type Export struct {
	Pkg   string
	Name  string
	Proto string
	Entry XSub
}

// Registry holds the exports a loader would bind into interpreter
// packages. Safe for concurrent registration; dispatch itself follows the
// interpreter's single-thread rule.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Export
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Export)}
}

func key(pkg, name string) string { return pkg + "::" + name }

// Register adds an export under pkg::name. Registering the same name
// twice is an error.
func (r *Registry) Register(pkg, name string, entry XSub, proto string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(pkg, name)
	if _, dup := r.entries[k]; dup {
		return errors.Wrap(errors.PhaseCall, errors.KindRegistration, nil,
			"duplicate export "+k)
	}
	r.entries[k] = &Export{Pkg: pkg, Name: name, Proto: proto, Entry: entry}
	return nil
}

// Lookup finds an export by its qualified name.
func (r *Registry) Lookup(pkg, name string) (*Export, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key(pkg, name)]
	return e, ok
}

// Each visits every export in stable qualified-name order.
func (r *Registry) Each(fn func(*Export)) {
	r.mu.Lock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	exports := make([]*Export, len(keys))
	for i, k := range keys {
		exports[i] = r.entries[k]
	}
	r.mu.Unlock()

	for _, e := range exports {
		fn(e)
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by package-level
// registration.
func Default() *Registry { return defaultRegistry }

// Register adds an export to the default registry.
func Register(pkg, name string, entry XSub, proto string) error {
	return defaultRegistry.Register(pkg, name, entry, proto)
}
