// Package visibility tracks which counter sections are shown.
package visibility

// Registry maps section keys to a visible flag. Absent keys are visible.
type Registry struct {
	entries map[string]bool
}

// New returns a registry seeded with entries.
func New(entries map[string]bool) *Registry {
	registry := &Registry{entries: make(map[string]bool, len(entries))}
	for key, visible := range entries {
		registry.entries[key] = visible
	}
	return registry
}

// Visible reports whether key is shown.
func (registry *Registry) Visible(key string) bool {
	visible, ok := registry.entries[key]
	if !ok {
		return true
	}
	return visible
}

// Toggle flips key and returns the new value.
func (registry *Registry) Toggle(key string) bool {
	visible := !registry.Visible(key)
	registry.entries[key] = visible
	return visible
}

// Set stores an absolute value for key. It reports whether the value changed.
func (registry *Registry) Set(key string, visible bool) bool {
	current, ok := registry.entries[key]
	registry.entries[key] = visible
	return !ok || current != visible
}

// Delete forgets key.
func (registry *Registry) Delete(key string) {
	delete(registry.entries, key)
}

// Prune drops keys outside known and marks missing known keys visible.
func (registry *Registry) Prune(known map[string]struct{}) {
	for key := range registry.entries {
		if _, ok := known[key]; !ok {
			delete(registry.entries, key)
		}
	}
	for key := range known {
		if _, ok := registry.entries[key]; !ok {
			registry.entries[key] = true
		}
	}
}

// Map returns a copy of the entries.
func (registry *Registry) Map() map[string]bool {
	entries := make(map[string]bool, len(registry.entries))
	for key, visible := range registry.entries {
		entries[key] = visible
	}
	return entries
}
