package types

import "strings"

// ModuleEntry is one line of the crate configuration: a symbolic module
// name bound to its physical position in the CAMAC system.
type ModuleEntry struct {
	Name    string
	Branch  int
	Crate   int
	Station int
	Comment string
}

// CrateMap maps upper-cased module names to their crate positions. It is
// loaded once at session start and must not be mutated afterwards; the
// dispatcher and CLI share it by reference.
type CrateMap map[string]ModuleEntry

// Lookup resolves a module name case-insensitively.
func (m CrateMap) Lookup(name string) (ModuleEntry, bool) {
	entry, ok := m[strings.ToUpper(name)]
	return entry, ok
}

// Names returns the configured module names in map order.
func (m CrateMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}
