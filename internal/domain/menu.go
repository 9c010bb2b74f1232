package domain

// Business is the per-slug record driving theme selection and the supported
// language/currency sets. Immutable once fetched for a page view.
type Business struct {
	Slug       string
	Theme      string // matched case-insensitively against registry keys
	Name       string
	Colors     Colors
	Languages  []string // first entry is the declared default
	Currencies []string // first entry is the declared default
	Features   map[string]bool
	Socials    []Social
	Hours      []Hours
	RawJSON    []byte // full upstream payload
}

type Colors struct {
	Primary   string
	Secondary string
}

// DefaultLanguage returns the business's declared default language, or "" when
// the supported set is unknown.
func (b Business) DefaultLanguage() string {
	if len(b.Languages) == 0 {
		return ""
	}
	return b.Languages[0]
}

func (b Business) DefaultCurrency() string {
	if len(b.Currencies) == 0 {
		return ""
	}
	return b.Currencies[0]
}

func (b Business) SupportsLanguage(code string) bool {
	for _, l := range b.Languages {
		if l == code {
			return true
		}
	}
	return false
}

func (b Business) SupportsCurrency(code string) bool {
	for _, c := range b.Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// Category is a menu section. Collections are ordered by Sort; the order is
// meaningful and preserved through storage.
type Category struct {
	ID    string
	Names map[string]string // lang -> name
	Sort  int
}

type DiscountKind string

const (
	DiscountPercent  DiscountKind = "percent"
	DiscountAbsolute DiscountKind = "absolute"
)

// Discount is a tagged variant: percent of the price or an absolute amount in
// the price's currency.
type Discount struct {
	Kind  DiscountKind
	Value float64
}

// Item is a menu entry. Read-only from a template's perspective.
type Item struct {
	ID         string
	CategoryID string
	Titles     map[string]string  // lang -> title
	Prices     map[string]float64 // currency -> amount
	Discount   *Discount
	Image      string
	RawJSON    []byte
}

// FavoriteEntry is a denormalized snapshot of an Item plus a quantity. Entries
// are unique by ItemID; re-adding an item increments Quantity.
type FavoriteEntry struct {
	ItemID   string
	Name     string
	Prices   map[string]float64
	Discount *Discount
	Image    string
	Quantity int
}

// Social and Hours mirror the upstream business-profile payloads; they are
// passed through to templates untouched.
type Social struct {
	Platform string
	URL      string
}

type Hours struct {
	Day   string
	Open  string
	Close string
}

// Feedback is relayed upstream fire-and-forget.
type Feedback struct {
	Slug    string
	Rating  int
	Comment string
}
