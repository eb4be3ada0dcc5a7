package service

import (
	"context"

	"github.com/rs/zerolog"

	"paperapi/internal/cache"
)

// Cache namespaces. Writes that change the published catalog invalidate nsPapers.
const (
	nsPapers     = "papers"
	nsCategories = "categories"
)

// cached reads key from c into dst, or loads it and stores the result. Cache failures are logged and bypassed.
func cached[T any](ctx context.Context, c cache.Cache, logger zerolog.Logger, ns, key string, load func() (T, error)) (T, error) {
	var v T
	hit, err := c.GetJSON(ctx, ns, key, &v)
	if err != nil {
		logger.Warn().Err(err).Str("ns", ns).Str("key", key).Msg("cache_get_failed")
	}
	if hit {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := c.SetJSON(ctx, ns, key, v); err != nil {
		logger.Warn().Err(err).Str("ns", ns).Str("key", key).Msg("cache_set_failed")
	}
	return v, nil
}

func invalidate(ctx context.Context, c cache.Cache, logger zerolog.Logger, namespaces ...string) {
	for _, ns := range namespaces {
		if err := c.Invalidate(ctx, ns); err != nil {
			logger.Warn().Err(err).Str("ns", ns).Msg("cache_invalidate_failed")
		}
	}
}
