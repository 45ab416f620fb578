package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kissariya_back_end/internal/models"
)

const DefaultTTL = 30 * 24 * time.Hour // 30 jours

// Messages publiés sur le canal du panier après chaque sauvegarde.
const (
	SyncUpdated = "updated"
	SyncCleared = "cleared"
)

// RedisKey est à la fois la clé du panier et le canal pub/sub de synchronisation.
func RedisKey(sessionID string) string {
	return "cart:" + sessionID
}

// RedisStore garde le panier d'une session sous cart:<sessionID>.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration, log *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, key: RedisKey(sessionID), ttl: ttl, log: log}
}

func (s *RedisStore) Load(ctx context.Context) []models.CartItem {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("⚠️ Lecture du panier Redis impossible, panier vide", zap.String("key", s.key), zap.Error(err))
		}
		return []models.CartItem{}
	}

	items, err := decodeItems(data)
	if err != nil {
		s.log.Warn("⚠️ Panier Redis corrompu ignoré", zap.String("key", s.key), zap.Error(err))
		return []models.CartItem{}
	}
	return items
}

// Save écrase le panier (ou supprime la clé s'il est vide) et notifie les autres onglets.
func (s *RedisStore) Save(ctx context.Context, items []models.CartItem) error {
	pipe := s.client.TxPipeline()
	signal := SyncUpdated
	if len(items) == 0 {
		pipe.Del(ctx, s.key)
		signal = SyncCleared
	} else {
		data, err := encodeItems(items)
		if err != nil {
			return fmt.Errorf("encodage panier: %w", err)
		}
		pipe.Set(ctx, s.key, data, s.ttl)
	}
	pipe.Publish(ctx, s.key, signal)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sauvegarde panier %s: %w", s.key, err)
	}
	return nil
}
