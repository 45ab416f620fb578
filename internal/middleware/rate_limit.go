package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limites appliquées par IP.
const (
	CartMaxWrites     = 20 // ajouts et modifications du panier par minute
	SearchMaxRequests = 30
	APICooldown       = time.Minute
)

// RateLimit limite le nombre de requêtes par IP sur une fenêtre fixe.
// Si Redis est indisponible, la requête passe.
func RateLimit(client *redis.Client, prefix string, max int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := prefix + ":" + c.ClientIP()

		requests, err := client.Get(ctx, key).Int()
		if err != nil && err != redis.Nil {
			log.Warn("⚠️ Rate limit indisponible", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if requests >= max {
			ttl := client.TTL(ctx, key).Val()
			if ttl <= 0 {
				ttl = window
			}
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes", int(ttl.Seconds())),
				"retry_after": int(ttl.Seconds()),
			})
			return
		}

		pipe := client.TxPipeline()
		pipe.Incr(ctx, key)
		if requests == 0 {
			pipe.Expire(ctx, key, window)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn("⚠️ Incrément rate limit", zap.String("key", key), zap.Error(err))
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max-requests-1))
		c.Next()
	}
}
