// Package state holds the two pieces of cross-cutting session state every
// template reads and mutates through a stable contract: display preferences
// and the favorites/cart list. Neither is reset when the active template
// changes.
package state

import (
	"sync"

	"github.com/nullsam/qr-menu/internal/domain"
)

// Snapshot is the read side of the preferences store.
type Snapshot struct {
	Language     string
	Currency     string
	Category     string // "" means all categories
	Translations map[string]string
	Colors       domain.Colors
	Features     map[string]bool
}

// Preferences is the global display-preference store. Setters validate against
// the business's supported sets once the record is known; before that, values
// are accepted provisionally and re-checked by ApplyBusiness. Invalid values
// fall back silently to the business's declared defaults rather than erroring:
// this is user-facing preference state, not a hard failure.
type Preferences struct {
	mu       sync.Mutex
	business *domain.Business
	snap     Snapshot
}

func NewPreferences() *Preferences {
	return &Preferences{snap: Snapshot{Translations: map[string]string{}}}
}

// Get returns a copy of the current preferences. The Translations map is
// shared read-only; callers must not mutate it.
func (p *Preferences) Get() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// SetLanguage applies code, or the business default when code is not in the
// supported set. The fallback is reported as ErrUnsupportedLanguage so
// callers can log it, but the store has already recovered.
func (p *Preferences) SetLanguage(code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.business != nil && !p.business.SupportsLanguage(code) {
		p.snap.Language = p.business.DefaultLanguage()
		return domain.ErrUnsupportedLanguage
	}
	p.snap.Language = code
	return nil
}

func (p *Preferences) SetCurrency(code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.business != nil && !p.business.SupportsCurrency(code) {
		p.snap.Currency = p.business.DefaultCurrency()
		return domain.ErrUnsupportedCurrency
	}
	p.snap.Currency = code
	return nil
}

// SetCategory never validates: "" means all, and a stale category id simply
// filters to an empty list, which templates must tolerate anyway.
func (p *Preferences) SetCategory(idOrAll string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.Category = idOrAll
}

func (p *Preferences) SetTranslations(table map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if table == nil {
		table = map[string]string{}
	}
	p.snap.Translations = table
}

// ApplyBusiness records the business whose supported sets govern validation
// and re-validates any provisionally accepted values. Unsupported selections
// fall back to the first supported language/currency. Category and
// translations are left alone: changing one preference never resets another.
func (p *Preferences) ApplyBusiness(b domain.Business) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.business = &b
	p.snap.Colors = b.Colors
	p.snap.Features = b.Features
	if p.snap.Language == "" || !b.SupportsLanguage(p.snap.Language) {
		p.snap.Language = b.DefaultLanguage()
	}
	if p.snap.Currency == "" || !b.SupportsCurrency(p.snap.Currency) {
		p.snap.Currency = b.DefaultCurrency()
	}
}
