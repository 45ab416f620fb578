package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kissariya_back_end/internal/models"
)

const (
	feedCacheKey = "explore:latest"
	FeedCacheTTL = time.Minute
)

// FeedSource est ce dont le flux Explorer a besoin pour se construire.
type FeedSource interface {
	ListActiveProducts(ctx context.Context, limit int) ([]models.Product, error)
	ShopByID(ctx context.Context, id gocql.UUID) (models.Shop, error)
	ListCategories(ctx context.Context, shopID gocql.UUID) ([]models.Category, error)
}

// Feed construit la liste des produits récents de la page Explorer, avec un cache Redis.
type Feed struct {
	source FeedSource
	redis  *redis.Client
	log    *zap.Logger
}

func NewFeed(source FeedSource, client *redis.Client, log *zap.Logger) *Feed {
	return &Feed{source: source, redis: client, log: log}
}

// Latest retourne les produits actifs les plus récents avec leur boutique et catégorie.
func (f *Feed) Latest(ctx context.Context) ([]models.ExploreProduct, error) {
	if cached, ok := f.cached(ctx); ok {
		return cached, nil
	}

	products, err := f.source.ListActiveProducts(ctx, ExploreLimit)
	if err != nil {
		return nil, err
	}

	shops := make(map[gocql.UUID]models.Shop)
	categoryNames := make(map[gocql.UUID]string)
	out := make([]models.ExploreProduct, 0, len(products))
	for _, p := range products {
		shop, ok := shops[p.ShopID]
		if !ok {
			shop, err = f.source.ShopByID(ctx, p.ShopID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			shops[p.ShopID] = shop

			categories, err := f.source.ListCategories(ctx, p.ShopID)
			if err != nil {
				return nil, err
			}
			for _, c := range categories {
				categoryNames[c.ID] = c.Name
			}
		}

		item := models.ExploreProduct{Product: p, Shop: shop.Summary()}
		if p.CategoryID != nil {
			item.CategoryName = categoryNames[*p.CategoryID]
		}
		out = append(out, item)
	}

	f.store(ctx, out)
	return out, nil
}

// Invalidate vide le cache après une modification du catalogue.
func (f *Feed) Invalidate(ctx context.Context) {
	if err := f.redis.Del(ctx, feedCacheKey).Err(); err != nil {
		f.log.Warn("⚠️ Invalidation du cache Explorer impossible", zap.Error(err))
	}
}

func (f *Feed) cached(ctx context.Context) ([]models.ExploreProduct, bool) {
	data, err := f.redis.Get(ctx, feedCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var out []models.ExploreProduct
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (f *Feed) store(ctx context.Context, products []models.ExploreProduct) {
	data, err := json.Marshal(products)
	if err != nil {
		f.log.Warn("⚠️ Encodage du flux Explorer", zap.Error(err))
		return
	}
	if err := f.redis.Set(ctx, feedCacheKey, data, FeedCacheTTL).Err(); err != nil {
		f.log.Warn("⚠️ Mise en cache du flux Explorer impossible", zap.Error(fmt.Errorf("set %s: %w", feedCacheKey, err)))
	}
}
