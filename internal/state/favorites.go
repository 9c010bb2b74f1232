package state

import (
	"sync"

	"github.com/nullsam/qr-menu/internal/domain"
)

// Favorites is the session-scoped cart. Entries are unique by item ID:
// re-adding an item merges by incrementing its quantity rather than appending
// a duplicate row. Count is the sum of quantities. Order is first-add order.
// No durable storage; the list lives and dies with the session.
type Favorites struct {
	mu      sync.Mutex
	entries []domain.FavoriteEntry
}

func NewFavorites() *Favorites {
	return &Favorites{}
}

// List returns a copy of the entries in first-add order.
func (f *Favorites) List() []domain.FavoriteEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.FavoriteEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Add merges item into the list with the given quantity (minimum 1). The
// snapshot fields (name, prices, discount, image) are refreshed on merge so a
// re-add after a menu update carries current data.
func (f *Favorites) Add(item domain.Item, name string, qty int) {
	if qty < 1 {
		qty = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ItemID == item.ID {
			f.entries[i].Quantity += qty
			f.entries[i].Name = name
			f.entries[i].Prices = item.Prices
			f.entries[i].Discount = item.Discount
			f.entries[i].Image = item.Image
			return
		}
	}
	f.entries = append(f.entries, domain.FavoriteEntry{
		ItemID:   item.ID,
		Name:     name,
		Prices:   item.Prices,
		Discount: item.Discount,
		Image:    item.Image,
		Quantity: qty,
	})
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (f *Favorites) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ItemID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the quantity for id. A quantity below 1 is rejected
// with ErrInvalidQuantity and leaves the prior quantity unchanged. An absent
// id is a no-op.
func (f *Favorites) SetQuantity(id string, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidQuantity
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ItemID == id {
			f.entries[i].Quantity = qty
			return nil
		}
	}
	return nil
}

func (f *Favorites) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
}

// Count returns the sum of quantities across entries.
func (f *Favorites) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for i := range f.entries {
		n += f.entries[i].Quantity
	}
	return n
}

// Has reports whether id is already favorited. This lookup, not slice
// uniqueness, is the source of truth for "already added".
func (f *Favorites) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ItemID == id {
			return true
		}
	}
	return false
}
