package domain

import "context"

type MenuRepository interface {
	// Write paths
	UpsertBusiness(ctx context.Context, b Business) error
	UpsertCategories(ctx context.Context, slug string, cs []Category) error
	UpsertItems(ctx context.Context, slug string, items []Item) error
	UpsertTranslations(ctx context.Context, slug, lang string, table map[string]string) error
	LogMiss(ctx context.Context, slug string, status int, reason string) error

	// Read paths
	GetBusiness(ctx context.Context, slug string) (Business, error)
	ListCategories(ctx context.Context, slug string) ([]Category, error)
	ListItems(ctx context.Context, slug string) ([]Item, error)
	GetTranslations(ctx context.Context, slug, lang string) (map[string]string, error)
}

type MenuAPIClient interface {
	GetBusiness(ctx context.Context, slug string) (map[string]any, error)
	GetCategories(ctx context.Context, slug string) ([]map[string]any, error)
	GetItems(ctx context.Context, slug string) ([]map[string]any, error)
	GetTranslations(ctx context.Context, slug, lang string) (map[string]any, error)
	GetSocials(ctx context.Context, slug string) ([]map[string]any, error)
	GetHours(ctx context.Context, slug string) ([]map[string]any, error)
	SubmitFeedback(ctx context.Context, fb Feedback) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
