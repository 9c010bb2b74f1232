// internal/adapters/menuapi/client.go
package menuapi

import (
	"bytes"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"context"

	"golang.org/x/time/rate"

	"github.com/nullsam/qr-menu/internal/adapters/observability"
	"github.com/nullsam/qr-menu/internal/domain"
)

// Client talks to the upstream QR-menu backend. All reads are rate limited
// client-side and retried on 429/transient 5xx with Retry-After support.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrNotFound     = errors.New("menuapi: not found")
	ErrUnauthorized = errors.New("menuapi: unauthorized")
	ErrForbidden    = errors.New("menuapi: forbidden")
)

// ---- Reads ----

func (c *Client) GetBusiness(ctx context.Context, slug string) (map[string]any, error) {
	var out map[string]any
	return out, c.get(ctx, "business", fmt.Sprintf("%s/businesses/%s", c.base, slug), &out)
}

func (c *Client) GetCategories(ctx context.Context, slug string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, "categories", fmt.Sprintf("%s/businesses/%s/categories", c.base, slug), &out)
}

func (c *Client) GetItems(ctx context.Context, slug string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, "items", fmt.Sprintf("%s/businesses/%s/items", c.base, slug), &out)
}

// GetTranslations fetches the backend's qr_languages table for one language.
func (c *Client) GetTranslations(ctx context.Context, slug, lang string) (map[string]any, error) {
	var out map[string]any
	return out, c.get(ctx, "translations", fmt.Sprintf("%s/businesses/%s/translations/%s", c.base, slug, lang), &out)
}

func (c *Client) GetSocials(ctx context.Context, slug string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, "socials", fmt.Sprintf("%s/businesses/%s/socials", c.base, slug), &out)
}

func (c *Client) GetHours(ctx context.Context, slug string) ([]map[string]any, error) {
	var out []map[string]any
	return out, c.get(ctx, "hours", fmt.Sprintf("%s/businesses/%s/hours", c.base, slug), &out)
}

// ---- Writes ----

// SubmitFeedback posts feedback upstream. Callers treat this as
// fire-and-forget; a non-2xx is returned as an error for logging only.
func (c *Client) SubmitFeedback(ctx context.Context, fb domain.Feedback) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(map[string]any{
		"slug":    fb.Slug,
		"rating":  fb.Rating,
		"comment": fb.Comment,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/businesses/%s/feedback", c.base, fb.Slug), bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("menuapi", "feedback", 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	observability.ObserveExternal("menuapi", "feedback", resp.StatusCode, time.Since(start))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("feedback rejected: %d", resp.StatusCode)
	}
	return nil
}

// ---- Internals ----

func (c *Client) setHeaders(req *http.Request) {
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "qr-menu/1.0")
}

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After. Every
// attempt is observed, with status 0 for transport failures.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		c.setHeaders(req)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("menuapi", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		observability.ObserveExternal("menuapi", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
