package render

import (
	"sort"
	"strings"
	"sync"

	"github.com/nullsam/qr-menu/internal/domain"
)

// Registry stores template loaders keyed by canonical (lowercase) theme
// identifier. Theme comparison is case-insensitive; keys are normalized on
// the way in and on lookup. Adding a theme is purely additive.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register adds or overwrites the loader for theme.
func (r *Registry) Register(theme string, loader Loader) {
	key := canonical(theme)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[key] = loader
}

// Resolve returns the loader for theme, or ErrUnknownTheme when no template
// is registered under the normalized identifier.
func (r *Registry) Resolve(theme string) (Loader, error) {
	key := canonical(theme)
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[key]
	if !ok {
		return nil, domain.ErrUnknownTheme
	}
	return l, nil
}

// Has reports whether a loader is registered for theme.
func (r *Registry) Has(theme string) bool {
	_, err := r.Resolve(theme)
	return err == nil
}

// List returns the registered canonical theme identifiers, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loaders))
	for name := range r.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func canonical(theme string) string {
	return strings.ToLower(strings.TrimSpace(theme))
}
