package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "github.com/nullsam/qr-menu/internal/adapters/http_server"
	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/domain"
	"github.com/nullsam/qr-menu/internal/render"
	"github.com/nullsam/qr-menu/internal/render/themes"
)

// ---- fakes ----

type fakeRepo struct {
	business domain.Business
	bizErr   error
	cats     []domain.Category
	items    []domain.Item
	i18n     map[string]string
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
	return nil
}
func (f *fakeRepo) GetBusiness(ctx context.Context, slug string) (domain.Business, error) {
	if f.bizErr != nil {
		return domain.Business{}, f.bizErr
	}
	if slug != f.business.Slug {
		return domain.Business{}, domain.ErrNotFound
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
	return f.i18n, nil
}

// nopCache always misses so reads hit the repo.
type nopCache struct{}

func (nopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (nopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (nopCache) Del(ctx context.Context, key string) error { return nil }

type fakeUpstream struct {
	feedback chan domain.Feedback
}

func (c *fakeUpstream) GetBusiness(ctx context.Context, slug string) (map[string]any, error) {
	return nil, domain.ErrNotFound
}
func (c *fakeUpstream) GetCategories(ctx context.Context, slug string) ([]map[string]any, error) {
	return nil, nil
}
func (c *fakeUpstream) GetItems(ctx context.Context, slug string) ([]map[string]any, error) {
	return nil, nil
}
func (c *fakeUpstream) GetTranslations(ctx context.Context, slug, lang string) (map[string]any, error) {
	return nil, nil
}
func (c *fakeUpstream) GetSocials(ctx context.Context, slug string) ([]map[string]any, error) {
	return nil, nil
}
func (c *fakeUpstream) GetHours(ctx context.Context, slug string) ([]map[string]any, error) {
	return nil, nil
}
func (c *fakeUpstream) SubmitFeedback(ctx context.Context, fb domain.Feedback) error {
	c.feedback <- fb
	return nil
}

func acmeRepo() *fakeRepo {
	return &fakeRepo{
		business: domain.Business{
			Slug:       "acme",
			Theme:      "Kardi",
			Name:       "Acme Diner",
			Languages:  []string{"en", "ar"},
			Currencies: []string{"USD", "EUR"},
		},
		cats: []domain.Category{
			{ID: "starters", Names: map[string]string{"en": "Starters"}, Sort: 1},
		},
		items: []domain.Item{
			{
				ID:         "falafel",
				CategoryID: "starters",
				Titles:     map[string]string{"en": "Falafel Plate"},
				Prices:     map[string]float64{"USD": 10},
				Discount:   &domain.Discount{Kind: domain.DiscountPercent, Value: 20},
			},
			{
				ID:         "tea",
				CategoryID: "drinks",
				Titles:     map[string]string{"en": "Mint Tea"},
				Prices:     map[string]float64{"USD": 3},
			},
		},
	}
}

func newTestServer(t *testing.T, repo *fakeRepo, upstream *fakeUpstream) *httptest.Server {
	t.Helper()
	q := app.NewQueryService(repo, nopCache{}, 10*time.Minute)
	reg := render.NewRegistry()
	themes.RegisterAll(reg)
	sessions := app.NewSessions(q, reg, 2*time.Second, 30*time.Minute)
	if upstream == nil {
		upstream = &fakeUpstream{feedback: make(chan domain.Feedback, 1)}
	}
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:        q,
		Sessions: sessions,
		Feedback: app.NewFeedbackRelay(upstream),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

// client carries cookies so state is visible across requests.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return res
}

// ---- tests ----

func TestGetPage_RendersActiveTemplate(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)

	res, err := c.Get(ts.URL + "/v1/menu/acme")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if st := res.Header.Get("X-Menu-State"); st != "active" {
		t.Fatalf("menu state %q", st)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	if !strings.Contains(buf.String(), "Acme Diner") {
		t.Fatal("page does not mention the business")
	}

	found := false
	for _, ck := range res.Cookies() {
		if ck.Name == "qr_session" && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("qr_session cookie not set")
	}
}

func TestGetPage_UnknownSlugIs404Problem(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)

	res, err := http.Get(ts.URL + "/v1/menu/ghost")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
}

func TestGetPage_UnknownThemeFallsBack(t *testing.T) {
	repo := acmeRepo()
	repo.business.Theme = "hologram"
	ts := newTestServer(t, repo, nil)

	res, err := http.Get(ts.URL + "/v1/menu/acme")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	if st := res.Header.Get("X-Menu-State"); st != "unresolved" {
		t.Fatalf("menu state %q", st)
	}
}

func TestListItems_ResolvesPricesAndETag(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)

	res := doJSON(t, c, http.MethodGet, ts.URL+"/v1/menu/acme/items", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	var items []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Price    float64 `json:"price"`
		Currency string  `json:"currency"`
	}
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items: %+v", items)
	}
	for _, it := range items {
		if it.ID == "falafel" {
			// USD 10 with 20% off
			if it.Price != 8 || it.Currency != "USD" || it.Title != "Falafel Plate" {
				t.Fatalf("falafel: %+v", it)
			}
		}
	}

	// Conditional re-fetch short-circuits.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/menu/acme/items", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := c.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("status %d, want 304", res2.StatusCode)
	}
}

func TestPutPreferences_CategoryFiltersItems(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)

	res := doJSON(t, c, http.MethodPut, ts.URL+"/v1/menu/acme/preferences",
		map[string]string{"category": "starters"})
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	res2 := doJSON(t, c, http.MethodGet, ts.URL+"/v1/menu/acme/items", nil)
	defer res2.Body.Close()
	var items []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res2.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != "falafel" {
		t.Fatalf("filtered items: %+v", items)
	}
}

func TestPutPreferences_UnsupportedCurrencyFallsBack(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)

	res := doJSON(t, c, http.MethodPut, ts.URL+"/v1/menu/acme/preferences",
		map[string]string{"currency": "BTC"})
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var snap struct {
		Currency string `json:"Currency"`
	}
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Currency != "USD" {
		t.Fatalf("currency %q, want business default USD", snap.Currency)
	}
}

func TestFavorites_Lifecycle(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)
	base := ts.URL + "/v1/menu/acme/favorites"

	type payload struct {
		Entries []struct {
			ItemID   string  `json:"item_id"`
			Name     string  `json:"name"`
			Price    float64 `json:"price"`
			Quantity int     `json:"quantity"`
		} `json:"entries"`
		Count int `json:"count"`
	}
	decode := func(res *http.Response) payload {
		t.Helper()
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status %d", res.StatusCode)
		}
		var p payload
		if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return p
	}

	// Add twice: still one entry, quantity accumulates.
	decode(doJSON(t, c, http.MethodPost, base, map[string]any{"item_id": "falafel", "quantity": 2}))
	p := decode(doJSON(t, c, http.MethodPost, base, map[string]any{"item_id": "falafel"}))
	if len(p.Entries) != 1 || p.Entries[0].Quantity != 3 || p.Count != 3 {
		t.Fatalf("after re-add: %+v", p)
	}
	if p.Entries[0].Name != "Falafel Plate" || p.Entries[0].Price != 8 {
		t.Fatalf("entry snapshot: %+v", p.Entries[0])
	}

	// Set an explicit quantity.
	p = decode(doJSON(t, c, http.MethodPut, base+"/falafel", map[string]int{"quantity": 5}))
	if p.Count != 5 {
		t.Fatalf("after set: %+v", p)
	}

	// Zero is rejected and leaves state alone.
	res := doJSON(t, c, http.MethodPut, base+"/falafel", map[string]int{"quantity": 0})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", res.StatusCode)
	}
	p = decode(doJSON(t, c, http.MethodGet, base, nil))
	if p.Count != 5 {
		t.Fatalf("state changed by invalid set: %+v", p)
	}

	// Remove, then clear is a no-op on empty.
	p = decode(doJSON(t, c, http.MethodDelete, base+"/falafel", nil))
	if p.Count != 0 || len(p.Entries) != 0 {
		t.Fatalf("after remove: %+v", p)
	}
	p = decode(doJSON(t, c, http.MethodDelete, base, nil))
	if p.Count != 0 {
		t.Fatalf("after clear: %+v", p)
	}
}

func TestFavorites_UnknownItemIs404(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)

	res := doJSON(t, c, http.MethodPost, ts.URL+"/v1/menu/acme/favorites",
		map[string]any{"item_id": "nope"})
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", res.StatusCode)
	}
}

func TestPostFeedback_RelaysUpstream(t *testing.T) {
	upstream := &fakeUpstream{feedback: make(chan domain.Feedback, 1)}
	ts := newTestServer(t, acmeRepo(), upstream)
	c := newClient(t)

	res := doJSON(t, c, http.MethodPost, ts.URL+"/v1/menu/acme/feedback",
		map[string]any{"rating": 5, "comment": "great"})
	res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("status %d", res.StatusCode)
	}

	select {
	case fb := <-upstream.feedback:
		if fb.Slug != "acme" || fb.Rating != 5 || fb.Comment != "great" {
			t.Fatalf("relayed feedback: %+v", fb)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feedback never reached upstream")
	}
}

func TestPostFeedback_RatingValidated(t *testing.T) {
	ts := newTestServer(t, acmeRepo(), nil)
	c := newClient(t)

	res := doJSON(t, c, http.MethodPost, ts.URL+"/v1/menu/acme/feedback",
		map[string]any{"rating": 9})
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", res.StatusCode)
	}
}
