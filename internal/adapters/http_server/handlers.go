package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/domain"
	"github.com/nullsam/qr-menu/internal/format"
)

const sessionCookie = "qr_session"

type Handlers struct {
	Q        *app.QueryService
	Sessions *app.Sessions
	Feedback *app.FeedbackRelay
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/menu/{slug}", func(r chi.Router) {
		r.Get("/", h.getPage)
		r.Get("/items", h.listItems)
		r.Put("/preferences", h.putPreferences)
		r.Get("/favorites", h.listFavorites)
		r.Post("/favorites", h.addFavorite)
		r.Put("/favorites/{id}", h.setFavoriteQuantity)
		r.Delete("/favorites/{id}", h.removeFavorite)
		r.Delete("/favorites", h.clearFavorites)
		r.Post("/feedback", h.postFeedback)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// session returns the caller's session, minting a new one (and its cookie)
// when the cookie is missing or stale.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *app.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess := h.Sessions.Get(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (h *Handlers) getPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)

	out, err := sess.Page.Page(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "menu not found")
			return
		}
		log.Error().Str("slug", slug).Err(err).Msg("page render failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("X-Menu-State", string(out.State))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Body); err != nil {
		log.Error().Err(err).Msg("failed to write page body")
	}
}

// itemDTO is an item with its title and price already resolved for the
// session's language and currency.
type itemDTO struct {
	ID        string  `json:"id"`
	Category  string  `json:"category,omitempty"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Image     string  `json:"image,omitempty"`
	Favorited bool    `json:"favorited"`
}

func (h *Handlers) listItems(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)

	b, err := h.Q.Business(r.Context(), slug)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "menu not found")
		return
	}
	sess.Prefs.ApplyBusiness(b)
	snap := sess.Prefs.Get()

	items, err := h.Q.Items(r.Context(), slug)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "menu items are temporarily unavailable")
		return
	}

	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		if snap.Category != "" && it.CategoryID != snap.Category {
			continue
		}
		pr, perr := format.PriceIn(it.Prices, snap.Currency, b.DefaultCurrency(), it.Discount)
		if perr != nil {
			continue // unpriceable item, leave it off the listing
		}
		out = append(out, itemDTO{
			ID:        it.ID,
			Category:  it.CategoryID,
			Title:     format.Title(it, snap.Language, b.DefaultLanguage()),
			Price:     pr.Amount,
			Currency:  pr.Currency,
			Image:     format.Image(it.Image, "/static/placeholder.png"),
			Favorited: sess.Favorites.Has(it.ID),
		})
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", snap.Language)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listItems body")
	}
}

func (h *Handlers) putPreferences(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)

	var req struct {
		Language *string `json:"language"`
		Currency *string `json:"currency"`
		Category *string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON object")
		return
	}

	// Unsupported values never fail the request; the store has already fallen
	// back to the business defaults when the setter reports them.
	if req.Language != nil {
		if err := sess.Prefs.SetLanguage(*req.Language); err != nil {
			log.Debug().Str("slug", slug).Str("language", *req.Language).Msg("unsupported language, using default")
		}
	}
	if req.Currency != nil {
		if err := sess.Prefs.SetCurrency(*req.Currency); err != nil {
			log.Debug().Str("slug", slug).Str("currency", *req.Currency).Msg("unsupported currency, using default")
		}
	}
	if req.Category != nil {
		sess.Prefs.SetCategory(*req.Category)
	}
	if b, err := h.Q.Business(r.Context(), slug); err == nil {
		sess.Prefs.ApplyBusiness(b)
	}

	writeJSON(w, http.StatusOK, sess.Prefs.Get())
}

type favoriteDTO struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

type favoritesPayload struct {
	Entries []favoriteDTO `json:"entries"`
	Count   int           `json:"count"`
}

func (h *Handlers) favoritesPayload(r *http.Request, slug string, sess *app.Session) favoritesPayload {
	var (
		currency string
		fallback string
	)
	if b, err := h.Q.Business(r.Context(), slug); err == nil {
		sess.Prefs.ApplyBusiness(b)
		currency = sess.Prefs.Get().Currency
		fallback = b.DefaultCurrency()
	}

	entries := sess.Favorites.List()
	out := make([]favoriteDTO, 0, len(entries))
	for _, e := range entries {
		dto := favoriteDTO{
			ItemID:   e.ItemID,
			Name:     e.Name,
			Image:    e.Image,
			Quantity: e.Quantity,
		}
		if pr, err := format.PriceIn(e.Prices, currency, fallback, e.Discount); err == nil {
			dto.Price = pr.Amount
			dto.Currency = pr.Currency
		}
		out = append(out, dto)
	}
	return favoritesPayload{Entries: out, Count: sess.Favorites.Count()}
}

func (h *Handlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)
	writeJSON(w, http.StatusOK, h.favoritesPayload(r, slug, sess))
}

func (h *Handlers) addFavorite(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)

	var req struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "item_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		writeProblem(w, http.StatusBadRequest, "Invalid Quantity", "quantity must be at least 1")
		return
	}

	items, err := h.Q.Items(r.Context(), slug)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "menu items are temporarily unavailable")
		return
	}
	var item *domain.Item
	for i := range items {
		if items[i].ID == req.ItemID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "item not found")
		return
	}

	var lang, defaultLang string
	if b, berr := h.Q.Business(r.Context(), slug); berr == nil {
		sess.Prefs.ApplyBusiness(b)
		lang = sess.Prefs.Get().Language
		defaultLang = b.DefaultLanguage()
	}
	sess.Favorites.Add(*item, format.Title(*item, lang, defaultLang), req.Quantity)

	writeJSON(w, http.StatusOK, h.favoritesPayload(r, slug, sess))
}

func (h *Handlers) setFavoriteQuantity(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	id := chi.URLParam(r, "id")
	sess := h.session(w, r)

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON object")
		return
	}
	if err := sess.Favorites.SetQuantity(id, req.Quantity); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Quantity", "quantity must be at least 1")
		return
	}

	writeJSON(w, http.StatusOK, h.favoritesPayload(r, slug, sess))
}

func (h *Handlers) removeFavorite(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)
	sess.Favorites.Remove(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.favoritesPayload(r, slug, sess))
}

func (h *Handlers) clearFavorites(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sess := h.session(w, r)
	sess.Favorites.Clear()
	writeJSON(w, http.StatusOK, h.favoritesPayload(r, slug, sess))
}

func (h *Handlers) postFeedback(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON object")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeProblem(w, http.StatusBadRequest, "Invalid Rating", "rating must be between 1 and 5")
		return
	}

	// Existence check keeps junk slugs out of the upstream relay.
	if _, err := h.Q.Business(r.Context(), slug); err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "menu not found")
		return
	}

	h.Feedback.Submit(domain.Feedback{Slug: slug, Rating: req.Rating, Comment: req.Comment})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "received_at": time.Now().UTC().Format(time.RFC3339)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
