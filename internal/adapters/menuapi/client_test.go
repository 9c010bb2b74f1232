package menuapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nullsam/qr-menu/internal/adapters/menuapi"
	"github.com/nullsam/qr-menu/internal/adapters/observability"
	"github.com/nullsam/qr-menu/internal/domain"
)

func TestClient_GetBusiness_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"slug": "acme", "theme": "kardi"})
		}
	}))
	defer ts.Close()

	cl, err := menuapi.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.GetBusiness(ctx, "acme")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["theme"] != "kardi" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetBusiness_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := menuapi.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.GetBusiness(ctx, "ghost")
	if !errors.Is(err, menuapi.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestClient_GetItems_DecodesList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/businesses/acme/items" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "falafel", "prices": map[string]any{"USD": 10.0}},
		})
	}))
	defer ts.Close()

	cl, _ := menuapi.New(ts.URL, "", 100)
	items, err := cl.GetItems(context.Background(), "acme")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(items) != 1 || items[0]["id"] != "falafel" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestClient_SubmitFeedback_PostsJSON(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/businesses/acme/feedback" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	cl, _ := menuapi.New(ts.URL, "", 100)
	err := cl.SubmitFeedback(context.Background(), domain.Feedback{Slug: "acme", Rating: 5, Comment: "great"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got["rating"] != 5.0 || got["comment"] != "great" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestClient_RecordsExternalMetrics(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"slug": "acme"})
	}))
	defer ts.Close()

	cl, _ := menuapi.New(ts.URL, "", 100)
	if _, err := cl.GetBusiness(context.Background(), "acme"); err != nil {
		t.Fatalf("err: %v", err)
	}

	mfs, err := observability.InitRegistry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "qrmenu_external_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["service"] == "menuapi" && labels["endpoint"] == "business" && labels["status"] == "200" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("external request to menuapi/business never observed")
	}
}
