package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	business domain.Business
	bizErr   error
	cats     []domain.Category
	items    []domain.Item
	i18n     map[string]string

	misses []string
}

func (f *fakeRepo) UpsertBusiness(ctx context.Context, b domain.Business) error { return nil }
func (f *fakeRepo) UpsertCategories(ctx context.Context, slug string, cs []domain.Category) error {
	return nil
}
func (f *fakeRepo) UpsertItems(ctx context.Context, slug string, items []domain.Item) error {
	return nil
}
func (f *fakeRepo) UpsertTranslations(ctx context.Context, slug, lang string, table map[string]string) error {
	return nil
}
func (f *fakeRepo) LogMiss(ctx context.Context, slug string, status int, reason string) error {
	f.misses = append(f.misses, reason)
	return nil
}
func (f *fakeRepo) GetBusiness(ctx context.Context, slug string) (domain.Business, error) {
	if f.bizErr != nil {
		return domain.Business{}, f.bizErr
	}
	return f.business, nil
}
func (f *fakeRepo) ListCategories(ctx context.Context, slug string) ([]domain.Category, error) {
	return f.cats, nil
}
func (f *fakeRepo) ListItems(ctx context.Context, slug string) ([]domain.Item, error) {
	return f.items, nil
}
func (f *fakeRepo) GetTranslations(ctx context.Context, slug, lang string) (map[string]string, error) {
	if f.i18n == nil {
		return map[string]string{}, nil
	}
	return f.i18n, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Business:
		*d = v.(domain.Business)
	case *[]domain.Category:
		*d = v.([]domain.Category)
	case *[]domain.Item:
		*d = v.([]domain.Item)
	case *map[string]string:
		*d = v.(map[string]string)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func acmeBusiness() domain.Business {
	return domain.Business{
		Slug:       "acme",
		Theme:      "Kardi",
		Name:       "Acme Diner",
		Languages:  []string{"en", "ar"},
		Currencies: []string{"USD"},
		Colors:     domain.Colors{Primary: "#111", Secondary: "#eee"},
	}
}

// ---- tests ----

func TestBusiness_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{business: acmeBusiness()}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	b, err := q.Business(context.Background(), "acme")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b.Theme != "Kardi" || b.Name != "Acme Diner" {
		t.Fatalf("unexpected business: %+v", b)
	}

	// Mutate repo to prove the second read comes from cache
	repo.business.Name = "SHOULD NOT SEE THIS"

	b2, err := q.Business(context.Background(), "acme")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b2.Name != "Acme Diner" {
		t.Fatalf("expected cached name, got %s", b2.Name)
	}
}

func TestItems_Cache(t *testing.T) {
	repo := &fakeRepo{items: []domain.Item{
		{ID: "falafel", Titles: map[string]string{"en": "Falafel"}, Prices: map[string]float64{"USD": 10}},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	out, err := q.Items(context.Background(), "acme")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].ID != "falafel" {
		t.Fatalf("unexpected items: %+v", out)
	}

	repo.items[0].ID = "changed"
	out2, _ := q.Items(context.Background(), "acme")
	if out2[0].ID != "falafel" {
		t.Fatalf("expected cached item, got %s", out2[0].ID)
	}
}

func TestBusiness_NotFoundPassesThrough(t *testing.T) {
	repo := &fakeRepo{bizErr: domain.ErrNotFound}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	if _, err := q.Business(context.Background(), "ghost"); err != domain.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
