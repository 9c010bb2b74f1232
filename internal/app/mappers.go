package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nullsam/qr-menu/internal/domain"
)

/********** alias registries (single source of truth) **********/

var businessAliases = map[string][]string{
	"name":       {"name", "business_name", "title"},
	"theme":      {"theme", "theme_id", "template", "design"},
	"primary":    {"colors.primary", "primary_color", "color1"},
	"secondary":  {"colors.secondary", "secondary_color", "color2"},
	"languages":  {"languages", "supported_languages", "langs"},
	"currencies": {"currencies", "supported_currencies"},
}

var categoryAliases = map[string][]string{
	"id":   {"id", "category_id", "slug"},
	"sort": {"sort", "order", "position", "rank"},
}

var socialAliases = map[string][]string{
	"platform": {"platform", "network", "name", "type"},
	"url":      {"url", "link", "href"},
}

var hoursAliases = map[string][]string{
	"day":   {"day", "weekday", "dow"},
	"open":  {"open", "opens", "from"},
	"close": {"close", "closes", "to"},
}

var itemAliases = map[string][]string{
	"id":       {"id", "item_id", "slug"},
	"category": {"category_id", "category", "section_id"},
	"image":    {"image", "thumbnail", "photo", "image_url"},
}

/********** business mapper **********/

func mapBusiness(slug string, p map[string]any) domain.Business {
	raw, _ := json.Marshal(p)
	return domain.Business{
		Slug:       slug,
		Name:       lookupAlias(p, businessAliases, "name"),
		Theme:      lookupAlias(p, businessAliases, "theme"),
		Colors: domain.Colors{
			Primary:   lookupAlias(p, businessAliases, "primary"),
			Secondary: lookupAlias(p, businessAliases, "secondary"),
		},
		Languages:  firstStringSlice(p, businessAliases["languages"]...),
		Currencies: firstStringSlice(p, businessAliases["currencies"]...),
		Features:   boolMap(lookup(p, "features")),
		RawJSON:    raw,
	}
}

/********** business-profile mappers **********/

func mapSocials(in []map[string]any) []domain.Social {
	out := make([]domain.Social, 0, len(in))
	for _, m := range in {
		s := domain.Social{
			Platform: lookupAlias(m, socialAliases, "platform"),
			URL:      lookupAlias(m, socialAliases, "url"),
		}
		if s.URL == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapHours(in []map[string]any) []domain.Hours {
	out := make([]domain.Hours, 0, len(in))
	for _, m := range in {
		h := domain.Hours{
			Day:   lookupAlias(m, hoursAliases, "day"),
			Open:  lookupAlias(m, hoursAliases, "open"),
			Close: lookupAlias(m, hoursAliases, "close"),
		}
		if h.Day == "" {
			continue
		}
		out = append(out, h)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

/********** category mapper **********/

func mapCategories(in []map[string]any) []domain.Category {
	out := make([]domain.Category, 0, len(in))
	for i, c := range in {
		cat := domain.Category{
			ID:    lookupAlias(c, categoryAliases, "id"),
			Names: stringMap(lookup(c, "names"), lookup(c, "name")),
			Sort:  i, // upstream order is the fallback ordering key
		}
		if f, ok := firstFloat(c, categoryAliases["sort"]...); ok {
			cat.Sort = int(f)
		}
		if cat.ID == "" {
			continue
		}
		out = append(out, cat)
	}
	return out
}

/********** item mapper **********/

func mapItems(in []map[string]any) []domain.Item {
	out := make([]domain.Item, 0, len(in))
	for _, m := range in {
		it := domain.Item{
			ID:         lookupAlias(m, itemAliases, "id"),
			CategoryID: lookupAlias(m, itemAliases, "category"),
			Titles:     stringMap(lookup(m, "titles"), lookup(m, "title")),
			Prices:     floatMap(lookup(m, "prices")),
			Image:      lookupAlias(m, itemAliases, "image"),
		}
		if it.ID == "" {
			continue
		}
		if d := mapDiscount(lookup(m, "discount")); d != nil {
			it.Discount = d
		}
		if raw, err := json.Marshal(m); err == nil {
			it.RawJSON = raw
		}
		out = append(out, it)
	}
	return out
}

// mapDiscount accepts {"type":"percent","value":20} and the older
// {"kind":...,"amount":...} shape.
func mapDiscount(v any) *domain.Discount {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	kind := str(m["type"])
	if kind == "" {
		kind = str(m["kind"])
	}
	value, okV := toFloat(m["value"])
	if !okV {
		value, okV = toFloat(m["amount"])
	}
	if !okV {
		return nil
	}
	switch strings.ToLower(kind) {
	case "percent", "percentage":
		return &domain.Discount{Kind: domain.DiscountPercent, Value: value}
	case "absolute", "amount", "fixed":
		return &domain.Discount{Kind: domain.DiscountAbsolute, Value: value}
	}
	return nil
}

/********** translations mapper **********/

// mapTranslations flattens the backend's qr_languages payload into a flat
// key -> string table. The entries may sit at the top level or under
// "qr_languages"/"translations".
func mapTranslations(p map[string]any) map[string]string {
	for _, k := range []string{"qr_languages", "translations", "entries"} {
		if nested, ok := p[k].(map[string]any); ok {
			p = nested
			break
		}
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		if s := str(v); s != "" {
			out[k] = s
		}
	}
	return out
}

/********** lookup helpers **********/

// lookup walks a dotted path ("colors.primary") through nested maps.
func lookup(m map[string]any, path ...string) any {
	if len(path) == 0 {
		return nil
	}
	parts := strings.Split(path[0], ".")
	var cur any = m
	for _, part := range parts {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mm[part]
	}
	return cur
}

func lookupAlias(m map[string]any, reg map[string][]string, field string) string {
	for _, key := range reg[field] {
		if s := str(lookup(m, key)); s != "" {
			return s
		}
	}
	return ""
}

func firstStringSlice(m map[string]any, keys ...string) []string {
	for _, key := range keys {
		v := lookup(m, key)
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s := str(e); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func firstFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := toFloat(lookup(m, key)); ok {
			return f, true
		}
	}
	return 0, false
}

// stringMap coerces a lang->string payload; scalar fallbacks land under "en".
func stringMap(candidates ...any) map[string]string {
	for _, v := range candidates {
		if mm, ok := v.(map[string]any); ok {
			out := make(map[string]string, len(mm))
			for k, e := range mm {
				if s := str(e); s != "" {
					out[k] = s
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	for _, v := range candidates {
		if s := str(v); s != "" {
			return map[string]string{"en": s}
		}
	}
	return nil
}

func floatMap(v any) map[string]float64 {
	mm, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(mm))
	for k, e := range mm {
		if f, ok := toFloat(e); ok {
			out[k] = f
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func boolMap(v any) map[string]bool {
	mm, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(mm))
	for k, e := range mm {
		if b, ok := e.(bool); ok {
			out[k] = b
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
