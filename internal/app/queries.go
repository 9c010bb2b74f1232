package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	redisad "github.com/nullsam/qr-menu/internal/adapters/redis"
	"github.com/nullsam/qr-menu/internal/domain"
)

// QueryService is the cache-aside read path. Every menu page hit funnels
// through here; concurrent misses for the same key are collapsed with
// singleflight so a cold cache does not stampede the database.
type QueryService struct {
	repo     domain.MenuRepository
	cache    domain.Cache
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewQueryService(r domain.MenuRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) Business(ctx context.Context, slug string) (domain.Business, error) {
	key := redisad.BusinessKey(slug)
	var b domain.Business
	if ok, _ := s.cache.Get(ctx, key, &b); ok {
		return b, nil
	}
	v, err, _ := s.sf.Do(key, func() (any, error) {
		b, err := s.repo.GetBusiness(ctx, slug)
		if err != nil {
			return domain.Business{}, err
		}
		_ = s.cache.Set(ctx, key, b, int(s.cacheTTL.Seconds()))
		return b, nil
	})
	if err != nil {
		return domain.Business{}, err
	}
	return v.(domain.Business), nil
}

func (s *QueryService) Categories(ctx context.Context, slug string) ([]domain.Category, error) {
	key := redisad.CategoriesKey(slug)
	var cs []domain.Category
	if ok, _ := s.cache.Get(ctx, key, &cs); ok {
		return cs, nil
	}
	v, err, _ := s.sf.Do(key, func() (any, error) {
		cs, err := s.repo.ListCategories(ctx, slug)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Category, len(cs))
		copy(out, cs)
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

func (s *QueryService) Items(ctx context.Context, slug string) ([]domain.Item, error) {
	key := redisad.ItemsKey(slug)
	var items []domain.Item
	if ok, _ := s.cache.Get(ctx, key, &items); ok {
		return items, nil
	}
	v, err, _ := s.sf.Do(key, func() (any, error) {
		items, err := s.repo.ListItems(ctx, slug)
		if err != nil {
			return nil, err
		}
		// copy to avoid aliasing the repo's backing array
		out := make([]domain.Item, len(items))
		copy(out, items)
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Item), nil
}

func (s *QueryService) Translations(ctx context.Context, slug, lang string) (map[string]string, error) {
	key := redisad.TranslationsKey(slug, lang)
	var table map[string]string
	if ok, _ := s.cache.Get(ctx, key, &table); ok {
		return table, nil
	}
	v, err, _ := s.sf.Do(key, func() (any, error) {
		table, err := s.repo.GetTranslations(ctx, slug, lang)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, key, table, int(s.cacheTTL.Seconds()))
		return table, nil
	})
	if err != nil {
		return nil, fmt.Errorf("translations %s/%s: %w", slug, lang, err)
	}
	return v.(map[string]string), nil
}
