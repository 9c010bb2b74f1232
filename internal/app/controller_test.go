package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/domain"
	"github.com/nullsam/qr-menu/internal/render"
	"github.com/nullsam/qr-menu/internal/render/themes"
	"github.com/nullsam/qr-menu/internal/state"
)

// nopCache forces every read through the repo, so tests can mutate the repo
// between page renders and observe the change.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (nopCache) Del(ctx context.Context, key string) error { return nil }

func newController(repo *fakeRepo) (*app.PageController, *state.Preferences, *state.Favorites) {
	q := app.NewQueryService(repo, nopCache{}, 10*time.Minute)
	reg := render.NewRegistry()
	themes.RegisterAll(reg)
	prefs := state.NewPreferences()
	favs := state.NewFavorites()
	return app.NewPageController(q, reg, prefs, favs, 2*time.Second), prefs, favs
}

func TestPage_ActivatesThemeCaseInsensitively(t *testing.T) {
	repo := &fakeRepo{
		business: acmeBusiness(), // theme "Kardi"
		cats: []domain.Category{
			{ID: "mains", Names: map[string]string{"en": "Mains"}, Sort: 1},
		},
		items: []domain.Item{
			{ID: "falafel", CategoryID: "mains", Titles: map[string]string{"en": "Falafel"}, Prices: map[string]float64{"USD": 10}},
		},
	}
	c, _, _ := newController(repo)

	out, err := c.Page(context.Background(), "acme")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out.State != render.StateActive || out.Theme != "kardi" {
		t.Fatalf("expected active kardi, got %+v", out)
	}
	if !strings.Contains(string(out.Body), "Falafel") {
		t.Fatalf("rendered page missing item: %s", out.Body)
	}
}

func TestPage_UnknownThemeRendersUnresolvedFallback(t *testing.T) {
	b := acmeBusiness()
	b.Theme = "unknown-theme"
	repo := &fakeRepo{business: b}
	c, _, _ := newController(repo)

	out, err := c.Page(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unknown theme must not error: %v", err)
	}
	if out.State != render.StateUnresolved {
		t.Fatalf("state: %v", out.State)
	}
	if !strings.Contains(string(out.Body), "no presentation") {
		t.Fatalf("unexpected fallback body: %s", out.Body)
	}
}

func TestPage_UnknownSlugErrors(t *testing.T) {
	repo := &fakeRepo{bizErr: domain.ErrNotFound}
	c, _, _ := newController(repo)

	if _, err := c.Page(context.Background(), "ghost"); err != domain.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPage_ThemeChangeSwapsTemplate(t *testing.T) {
	repo := &fakeRepo{business: acmeBusiness()}
	c, _, _ := newController(repo)

	out, err := c.Page(context.Background(), "acme")
	if err != nil || out.Theme != "kardi" {
		t.Fatalf("first render: theme=%s err=%v", out.Theme, err)
	}

	repo.business.Theme = "Bistro"
	out2, err := c.Page(context.Background(), "acme")
	if err != nil || out2.Theme != "bistro" || out2.State != render.StateActive {
		t.Fatalf("after theme change: %+v err=%v", out2, err)
	}
}

func TestPage_StateSurvivesThemeChange(t *testing.T) {
	repo := &fakeRepo{
		business: acmeBusiness(),
		items: []domain.Item{
			{ID: "falafel", Titles: map[string]string{"en": "Falafel"}, Prices: map[string]float64{"USD": 10}},
		},
	}
	c, prefs, favs := newController(repo)

	if _, err := c.Page(context.Background(), "acme"); err != nil {
		t.Fatalf("err: %v", err)
	}
	prefs.SetLanguage("ar")
	favs.Add(repo.items[0], "Falafel", 2)

	// theme changes under the same session: resolver swaps units, stores stay
	repo.business.Theme = "classic"
	if _, err := c.Page(context.Background(), "acme"); err != nil {
		t.Fatalf("err: %v", err)
	}

	if got := prefs.Get().Language; got != "ar" {
		t.Fatalf("language reset by template swap: %q", got)
	}
	if favs.Count() != 2 {
		t.Fatalf("favorites reset by template swap: %d", favs.Count())
	}
	if snap := c.Resolver().Snapshot(); snap.Theme != "classic" || snap.State != render.StateActive {
		t.Fatalf("resolver did not swap: %+v", snap)
	}
}

func TestPage_TranslationsFlowIntoPrefs(t *testing.T) {
	repo := &fakeRepo{
		business: acmeBusiness(),
		i18n:     map[string]string{"menu.cart": "Basket"},
	}
	c, prefs, _ := newController(repo)

	out, err := c.Page(context.Background(), "acme")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := prefs.Get().Translations["menu.cart"]; got != "Basket" {
		t.Fatalf("translations not applied: %q", got)
	}
	if !strings.Contains(string(out.Body), "Basket") {
		t.Fatalf("translated label missing from output")
	}
}
