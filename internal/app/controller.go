package app

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nullsam/qr-menu/internal/domain"
	"github.com/nullsam/qr-menu/internal/render"
	"github.com/nullsam/qr-menu/internal/state"
)

// PageController composes one page session: it fetches the business, keeps
// the preference/favorites stores validated against it, drives the template
// resolver when the slug or theme changes, and renders the active unit (or a
// fallback) with the current menu data.
type PageController struct {
	q           *QueryService
	resolver    *render.Resolver
	prefs       *state.Preferences
	favorites   *state.Favorites
	resolveWait time.Duration
}

// PageOutput is what the HTTP layer writes back.
type PageOutput struct {
	ContentType string
	Body        []byte
	State       render.State
	Theme       string
}

func NewPageController(q *QueryService, reg *render.Registry, prefs *state.Preferences, favs *state.Favorites, resolveWait time.Duration) *PageController {
	r := render.NewResolver(reg)
	r.OnSettle(func(theme, outcome string) {
		if observeResolution != nil {
			observeResolution(theme, outcome)
		}
	})
	return &PageController{
		q:           q,
		resolver:    r,
		prefs:       prefs,
		favorites:   favs,
		resolveWait: resolveWait,
	}
}

// observeResolution is swapped in by the API binary; tests leave it nil-safe.
var observeResolution func(theme, outcome string)

// SetResolutionObserver wires resolver outcomes into metrics. Call once at
// startup, before any controller is created.
func SetResolutionObserver(fn func(theme, outcome string)) { observeResolution = fn }

// Page renders the menu for slug. The business record drives everything:
// theme resolution, preference validation, and the translation table for the
// selected language. Missing business yields domain.ErrNotFound; template
// problems never do, they degrade to fallback output.
func (c *PageController) Page(ctx context.Context, slug string) (PageOutput, error) {
	b, err := c.q.Business(ctx, slug)
	if err != nil {
		return PageOutput{}, err
	}

	c.prefs.ApplyBusiness(b)
	lang := c.prefs.Get().Language
	if table, terr := c.q.Translations(ctx, slug, lang); terr == nil {
		c.prefs.SetTranslations(table)
	} else {
		log.Warn().Str("slug", slug).Str("lang", lang).Err(terr).Msg("translations unavailable")
	}

	// The loader must not die with this request: a second visitor arriving
	// right after a canceled first request still needs the unit.
	c.resolver.Activate(context.WithoutCancel(ctx), b)

	cats, catsErr := c.q.Categories(ctx, slug)
	items, itemsErr := c.q.Items(ctx, slug)
	itemsLoading := false
	if catsErr != nil || itemsErr != nil {
		// degraded render: template shows its loading state
		itemsLoading = true
		log.Warn().Str("slug", slug).AnErr("categories", catsErr).AnErr("items", itemsErr).Msg("menu data unavailable")
	}

	wctx, cancel := context.WithTimeout(ctx, c.resolveWait)
	defer cancel()
	snap := c.resolver.Wait(wctx)

	switch snap.State {
	case render.StateActive:
		body, rerr := snap.Unit.Render(ctx, render.Input{
			Business:     b,
			Categories:   cats,
			Items:        items,
			ItemsLoading: itemsLoading,
			Prefs:        c.prefs,
			Favorites:    c.favorites,
			HomePath:     "/v1/menu/" + slug,
		})
		if rerr != nil {
			log.Error().Str("slug", slug).Str("theme", snap.Theme).Err(rerr).Msg("template render failed")
			return fallbackPage(b, snap.Theme, render.StateFailed), nil
		}
		return PageOutput{ContentType: snap.Unit.ContentType(), Body: body, State: snap.State, Theme: snap.Theme}, nil

	case render.StateUnresolved:
		return fallbackPage(b, snap.Theme, snap.State), nil

	default:
		// Failed, or still Resolving past the wait budget: both degrade to
		// the load-failed fallback. The resolver keeps its own state; a later
		// request may find it Active.
		if snap.Err != nil {
			log.Error().Str("slug", slug).Str("theme", snap.Theme).Err(snap.Err).Msg("template unavailable")
		}
		return fallbackPage(b, snap.Theme, render.StateFailed), nil
	}
}

// Resolver exposes the state machine for the HTTP layer's state endpoint and
// for tests.
func (c *PageController) Resolver() *render.Resolver { return c.resolver }

func fallbackPage(b domain.Business, theme string, st render.State) PageOutput {
	title := b.Name
	if title == "" {
		title = b.Slug
	}
	var msg string
	if st == render.StateUnresolved {
		msg = "This menu has no presentation configured."
	} else {
		msg = "The menu presentation could not be loaded. Please try again."
	}
	body := fmt.Sprintf(
		"<!doctype html><html><head><meta charset=\"utf-8\"><title>%s</title></head><body class=\"fallback %s\"><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(title), st, html.EscapeString(title), msg)
	return PageOutput{ContentType: "text/html; charset=utf-8", Body: []byte(body), State: st, Theme: theme}
}
