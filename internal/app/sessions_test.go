package app_test

import (
	"testing"
	"time"

	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/render"
)

func newSessions(ttl time.Duration) *app.Sessions {
	q := app.NewQueryService(&fakeRepo{}, &fakeCache{}, time.Minute)
	return app.NewSessions(q, render.NewRegistry(), time.Second, ttl)
}

func TestSessions_ReuseByID(t *testing.T) {
	s := newSessions(time.Minute)

	a := s.Get("")
	if a.ID == "" || a.Prefs == nil || a.Favorites == nil || a.Page == nil {
		t.Fatalf("incomplete session: %+v", a)
	}

	b := s.Get(a.ID)
	if b != a {
		t.Fatal("same id should return the same session")
	}
	if c := s.Get("bogus"); c == a {
		t.Fatal("unknown id must mint a fresh session")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestSessions_ExpiryAndSweep(t *testing.T) {
	s := newSessions(10 * time.Millisecond)

	a := s.Get("")
	time.Sleep(25 * time.Millisecond)

	if b := s.Get(a.ID); b == a {
		t.Fatal("expired session must not be reused")
	}

	time.Sleep(25 * time.Millisecond)
	s.Sweep()
	if s.Len() != 0 {
		t.Fatalf("len after sweep = %d", s.Len())
	}
}
