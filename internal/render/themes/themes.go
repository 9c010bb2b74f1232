// Package themes holds the built-in template units. Each theme registers a
// lazy loader: the HTML template is parsed on first activation, not at
// program start, and parsing again on a repeat load yields an equivalent
// unit.
package themes

import (
	"bytes"
	"context"
	"html/template"

	"github.com/nullsam/qr-menu/internal/domain"
	"github.com/nullsam/qr-menu/internal/format"
	"github.com/nullsam/qr-menu/internal/render"
)

const fallbackImage = "/static/placeholder.png"

// RegisterAll wires every built-in theme into reg.
func RegisterAll(reg *render.Registry) {
	reg.Register("kardi", htmlLoader("kardi", kardiHTML))
	reg.Register("bistro", htmlLoader("bistro", bistroHTML))
	reg.Register("classic", htmlLoader("classic", classicHTML))
}

func htmlLoader(name, src string) render.Loader {
	return func(ctx context.Context) (render.TemplateUnit, error) {
		tpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, err
		}
		return &htmlUnit{name: name, tpl: tpl}, nil
	}
}

type htmlUnit struct {
	name string
	tpl  *template.Template
}

func (u *htmlUnit) Name() string        { return u.name }
func (u *htmlUnit) ContentType() string { return "text/html; charset=utf-8" }

func (u *htmlUnit) Render(ctx context.Context, in render.Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := u.tpl.Execute(&buf, buildView(in)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// view is the fully resolved model handed to the HTML templates. All price,
// title, and translation lookups happen here so the markup stays dumb.
type view struct {
	Business     string
	Primary      string
	Secondary    string
	HomePath     string
	Language     string
	Currency     string
	ItemsLoading bool
	EmptyLabel   string
	CartLabel    string
	CartCount    int
	Sections     []section
	Socials      []domain.Social
	Hours        []domain.Hours
}

type section struct {
	Name  string
	Items []row
}

type row struct {
	Title     string
	Price     float64
	Currency  string
	HasPrice  bool
	Image     string
	Favorited bool
}

func buildView(in render.Input) view {
	prefs := in.Prefs.Get()
	defLang := in.Business.DefaultLanguage()
	defCur := in.Business.DefaultCurrency()

	v := view{
		Business:     in.Business.Name,
		Primary:      prefs.Colors.Primary,
		Secondary:    prefs.Colors.Secondary,
		HomePath:     in.HomePath,
		Language:     prefs.Language,
		Currency:     prefs.Currency,
		ItemsLoading: in.ItemsLoading,
		EmptyLabel:   format.Translate(prefs.Translations, "menu.empty", "Nothing here yet"),
		CartLabel:    format.Translate(prefs.Translations, "menu.cart", "Cart"),
		CartCount:    in.Favorites.Count(),
		Socials:      in.Business.Socials,
		Hours:        in.Business.Hours,
	}

	byCategory := map[string][]domain.Item{}
	for _, it := range in.Items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
	}

	for _, c := range in.Categories {
		if prefs.Category != "" && prefs.Category != c.ID {
			continue
		}
		sec := section{Name: format.CategoryName(c, prefs.Language, defLang)}
		for _, it := range byCategory[c.ID] {
			r := row{
				Title:     format.Title(it, prefs.Language, defLang),
				Image:     format.Image(it.Image, fallbackImage),
				Favorited: in.Favorites.Has(it.ID),
			}
			if res, err := format.PriceIn(it.Prices, prefs.Currency, defCur, it.Discount); err == nil {
				r.Price = res.Amount
				r.Currency = res.Currency
				r.HasPrice = true
			}
			sec.Items = append(sec.Items, r)
		}
		v.Sections = append(v.Sections, sec)
	}
	return v
}
