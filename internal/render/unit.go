// Package render maps a business's theme identifier to a lazily-loaded
// template unit and keeps exactly one unit active per page session, swapping
// cleanly when the theme changes.
package render

import (
	"context"

	"github.com/nullsam/qr-menu/internal/domain"
	"github.com/nullsam/qr-menu/internal/state"
)

// Input is the fixed contract every template unit accepts. Units must
// tolerate Categories/Items being nil or empty and render a loading/empty
// state instead of failing. Preferences and favorites are consumed through
// the store handles, never through any other channel.
type Input struct {
	Business     domain.Business
	Categories   []domain.Category
	Items        []domain.Item
	ItemsLoading bool
	Prefs        *state.Preferences
	Favorites    *state.Favorites
	HomePath     string
}

// TemplateUnit is an opaque renderable resolved from a theme identifier.
type TemplateUnit interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, in Input) ([]byte, error)
}

// Loader produces a TemplateUnit. Loaders must be safe to invoke repeatedly
// and idempotent: callers do not guarantee memoization of results.
type Loader func(ctx context.Context) (TemplateUnit, error)
