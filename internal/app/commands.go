package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nullsam/qr-menu/internal/adapters/menuapi"
	"github.com/nullsam/qr-menu/internal/adapters/observability"
	redisad "github.com/nullsam/qr-menu/internal/adapters/redis"
	"github.com/nullsam/qr-menu/internal/domain"
)

// IngestionService pulls one business's menu from the upstream backend into
// the repository, invalidating caches as it goes. 404/401/403 from upstream
// are recorded as misses and stop the slug gracefully; anything else bubbles.
type IngestionService struct {
	client domain.MenuAPIClient
	repo   domain.MenuRepository
	cache  domain.Cache
}

func NewIngestionService(c domain.MenuAPIClient, r domain.MenuRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{client: c, repo: r, cache: cache}
}

func (s *IngestionService) IngestBusiness(ctx context.Context, slug string) error {
	// 1) Business record first: it carries the theme and the supported sets
	// everything else hangs off.
	p, err := s.client.GetBusiness(ctx, slug)
	if err != nil {
		if status, reason, miss := classifyMiss(err); miss {
			_ = s.repo.LogMiss(ctx, slug, status, reason)
			s.invalidateAll(ctx, slug, nil)
			return nil
		}
		return err
	}

	b := mapBusiness(slug, p)

	// Profile extras ride on the business row. Fully best-effort: a backend
	// without socials or hours answers 404 and that is not a miss worth
	// recording.
	if socials, serr := s.client.GetSocials(ctx, slug); serr == nil {
		b.Socials = mapSocials(socials)
	} else if _, _, miss := classifyMiss(serr); !miss {
		log.Warn().Str("slug", slug).Err(serr).Msg("socials unavailable")
	}
	if hours, herr := s.client.GetHours(ctx, slug); herr == nil {
		b.Hours = mapHours(hours)
	} else if _, _, miss := classifyMiss(herr); !miss {
		log.Warn().Str("slug", slug).Err(herr).Msg("hours unavailable")
	}

	if err := s.repo.UpsertBusiness(ctx, b); err != nil {
		return fmt.Errorf("upsert business %s: %w", slug, err)
	}
	_ = s.cache.Del(ctx, redisad.BusinessKey(slug))

	// 2) Categories and items. Best-effort on upstream misses, but a failed
	// upsert must surface so we know writes are broken.
	if cats, cerr := s.client.GetCategories(ctx, slug); cerr != nil {
		if status, _, miss := classifyMiss(cerr); miss {
			_ = s.repo.LogMiss(ctx, slug, status, "categories")
			_ = s.cache.Del(ctx, redisad.CategoriesKey(slug))
		} else {
			return cerr
		}
	} else {
		if err := s.repo.UpsertCategories(ctx, slug, mapCategories(cats)); err != nil {
			return fmt.Errorf("upsert categories %s: %w", slug, err)
		}
		_ = s.cache.Del(ctx, redisad.CategoriesKey(slug))
	}

	if items, ierr := s.client.GetItems(ctx, slug); ierr != nil {
		if status, _, miss := classifyMiss(ierr); miss {
			_ = s.repo.LogMiss(ctx, slug, status, "items")
			_ = s.cache.Del(ctx, redisad.ItemsKey(slug))
		} else {
			return ierr
		}
	} else {
		if err := s.repo.UpsertItems(ctx, slug, mapItems(items)); err != nil {
			return fmt.Errorf("upsert items %s: %w", slug, err)
		}
		_ = s.cache.Del(ctx, redisad.ItemsKey(slug))
	}

	// 3) Translations per supported language; per-language misses are logged
	// and skipped.
	for _, lang := range b.Languages {
		tr, terr := s.client.GetTranslations(ctx, slug, lang)
		if terr != nil {
			if status, _, miss := classifyMiss(terr); miss {
				_ = s.repo.LogMiss(ctx, slug, status, "i18n:"+lang)
				_ = s.cache.Del(ctx, redisad.TranslationsKey(slug, lang))
				continue
			}
			return terr
		}
		if err := s.repo.UpsertTranslations(ctx, slug, lang, mapTranslations(tr)); err != nil {
			return fmt.Errorf("upsert translations %s/%s: %w", slug, lang, err)
		}
		_ = s.cache.Del(ctx, redisad.TranslationsKey(slug, lang))
	}

	return nil
}

func (s *IngestionService) invalidateAll(ctx context.Context, slug string, langs []string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, redisad.BusinessKey(slug))
	_ = s.cache.Del(ctx, redisad.CategoriesKey(slug))
	_ = s.cache.Del(ctx, redisad.ItemsKey(slug))
	for _, l := range langs {
		_ = s.cache.Del(ctx, redisad.TranslationsKey(slug, l))
	}
}

// classifyMiss maps upstream "the content is gone or blocked" errors to a
// (status, reason) pair. Anything else is unexpected and should bubble.
func classifyMiss(err error) (int, string, bool) {
	low := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, menuapi.ErrNotFound) || strings.Contains(low, "not found"):
		return 404, "not found", true
	case errors.Is(err, menuapi.ErrUnauthorized) || strings.Contains(low, "unauthorized"):
		return 401, "unauthorized", true
	case errors.Is(err, menuapi.ErrForbidden) || strings.Contains(low, "forbidden"):
		return 403, "inactive", true
	}
	return 0, "", false
}

// FeedbackRelay forwards guest feedback to the upstream backend. The relay is
// fire-and-forget: failures are logged, never surfaced to the guest.
type FeedbackRelay struct {
	client domain.MenuAPIClient
}

func NewFeedbackRelay(c domain.MenuAPIClient) *FeedbackRelay {
	return &FeedbackRelay{client: c}
}

func (f *FeedbackRelay) Submit(fb domain.Feedback) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := f.client.SubmitFeedback(ctx, fb); err != nil {
			log.Warn().Str("slug", fb.Slug).Str("kind", observability.LabelErr(err)).Err(err).Msg("feedback relay failed")
		}
	}()
}
