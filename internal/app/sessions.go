package app

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/nullsam/qr-menu/internal/render"
	"github.com/nullsam/qr-menu/internal/state"
)

// Session is one guest's page session: their preference and favorites stores
// plus the page controller whose resolver survives across requests. The
// stores are never reset when the active template changes; the whole session
// goes away together on expiry.
type Session struct {
	ID        string
	Prefs     *state.Preferences
	Favorites *state.Favorites
	Page      *PageController

	expires time.Time
}

// Sessions is the in-memory session registry. Expired entries are dropped
// lazily on access and by Sweep.
type Sessions struct {
	q           *QueryService
	registry    *render.Registry
	resolveWait time.Duration
	ttl         time.Duration

	mu sync.Mutex
	m  map[string]*Session
}

func NewSessions(q *QueryService, reg *render.Registry, resolveWait, ttl time.Duration) *Sessions {
	return &Sessions{
		q:           q,
		registry:    reg,
		resolveWait: resolveWait,
		ttl:         ttl,
		m:           make(map[string]*Session),
	}
}

// Get returns the session for id, creating one when id is empty, unknown, or
// expired. Every access extends the session's lease.
func (s *Sessions) Get(id string) *Session {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.m[id]; ok && now.Before(sess.expires) {
			sess.expires = now.Add(s.ttl)
			return sess
		}
	}

	prefs := state.NewPreferences()
	favs := state.NewFavorites()
	sess := &Session{
		ID:        newSessionID(),
		Prefs:     prefs,
		Favorites: favs,
		Page:      NewPageController(s.q, s.registry, prefs, favs, s.resolveWait),
		expires:   now.Add(s.ttl),
	}
	s.m[sess.ID] = sess
	return sess
}

// Sweep drops expired sessions. The API binary runs this on a ticker.
func (s *Sessions) Sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.m {
		if !now.Before(sess.expires) {
			delete(s.m, id)
		}
	}
}

// Len reports live sessions (expired-but-unswept included).
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// time-based last resort; collisions only cost a shared cart
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b[:])
}
