// Package format holds the pure display helpers every template relies on:
// price resolution, localized titles, translation strings, and image URLs.
// No state, no I/O.
package format

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/nullsam/qr-menu/internal/domain"
)

// Image returns path when it is a non-empty, parseable resource reference and
// fallback otherwise. It never returns an empty string as long as fallback is
// usable.
func Image(path, fallback string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return fallback
	}
	if _, err := url.Parse(p); err != nil {
		return fallback
	}
	return p
}

// Price looks up the amount for currency and applies discount. Missing
// currency yields ErrUnsupportedCurrency; the caller decides the fallback
// (see PriceIn). Amounts are rounded half-to-even to two decimals.
func Price(prices map[string]float64, currency string, d *domain.Discount) (float64, error) {
	amount, ok := prices[currency]
	if !ok {
		return 0, domain.ErrUnsupportedCurrency
	}
	return roundMinor(applyDiscount(amount, d)), nil
}

// PriceResult carries the resolved amount plus which currency actually served
// it. FellBack is set when the requested currency was unavailable and the
// business default was used instead.
type PriceResult struct {
	Amount   float64
	Currency string
	FellBack bool
}

// PriceIn resolves prices in the requested currency, falling back to the
// business's declared default currency when the requested one is absent. The
// fallback order is deterministic: requested, then fallbackCurrency. Only when
// neither is priced does it return ErrUnsupportedCurrency.
func PriceIn(prices map[string]float64, requested, fallbackCurrency string, d *domain.Discount) (PriceResult, error) {
	if a, err := Price(prices, requested, d); err == nil {
		return PriceResult{Amount: a, Currency: requested}, nil
	}
	a, err := Price(prices, fallbackCurrency, d)
	if err != nil {
		return PriceResult{}, domain.ErrUnsupportedCurrency
	}
	return PriceResult{Amount: a, Currency: fallbackCurrency, FellBack: true}, nil
}

// Title resolves an item's title for lang, falling back to defaultLang and
// then to the lexicographically first available entry. It returns "" only for
// an empty Titles map.
func Title(item domain.Item, lang, defaultLang string) string {
	if t := strings.TrimSpace(item.Titles[lang]); t != "" {
		return t
	}
	if t := strings.TrimSpace(item.Titles[defaultLang]); t != "" {
		return t
	}
	if len(item.Titles) == 0 {
		return ""
	}
	// deterministic pick among whatever is left
	keys := make([]string, 0, len(item.Titles))
	for k := range item.Titles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t := strings.TrimSpace(item.Titles[k]); t != "" {
			return t
		}
	}
	return ""
}

// CategoryName resolves a category's display name the same way Title does.
func CategoryName(c domain.Category, lang, defaultLang string) string {
	return Title(domain.Item{Titles: c.Names}, lang, defaultLang)
}

// Translate returns table[key] or fallback when the key is absent or empty.
func Translate(table map[string]string, key, fallback string) string {
	if v, ok := table[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func applyDiscount(amount float64, d *domain.Discount) float64 {
	if d == nil {
		return amount
	}
	switch d.Kind {
	case domain.DiscountPercent:
		return amount * (1 - d.Value/100)
	case domain.DiscountAbsolute:
		return math.Max(0, amount-d.Value)
	default:
		return amount
	}
}

// roundMinor rounds to the standard two-decimal minor unit, half to even.
func roundMinor(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
