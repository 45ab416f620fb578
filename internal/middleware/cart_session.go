package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// CartSessionKey est la clé du contexte Gin qui porte l'identifiant du panier.
	CartSessionKey    = "cart_session"
	CartSessionHeader = "X-Cart-Session"

	cartCookieName = "kissariya_cart"
	cartIDField    = "cart_id"
)

// NewCartCookieStore prépare le store de cookies signés du panier.
func NewCartCookieStore(secret []byte, maxAge int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(maxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// CartSession attache un identifiant de panier à chaque visiteur. Un en-tête
// X-Cart-Session valide a priorité sur le cookie.
func CartSession(store sessions.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(CartSessionHeader); id != "" {
			if _, err := uuid.Parse(id); err == nil {
				c.Set(CartSessionKey, id)
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Session panier invalide"})
			return
		}

		session, err := store.Get(c.Request, cartCookieName)
		if err != nil {
			// Cookie illisible (secret changé) : on repart d'une session neuve.
			log.Debug("🍪 Cookie panier illisible", zap.Error(err))
		}

		id, _ := session.Values[cartIDField].(string)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			session.Values[cartIDField] = id
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Warn("⚠️ Sauvegarde cookie panier", zap.Error(err))
			}
		}

		c.Header(CartSessionHeader, id)
		c.Set(CartSessionKey, id)
		c.Next()
	}
}

// CartID retourne l'identifiant du panier de la requête.
func CartID(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
