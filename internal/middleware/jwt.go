package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// UserIDKey est la clé du contexte Gin qui porte l'identifiant du marchand connecté.
const UserIDKey = "user_id"

var (
	errMissingToken = errors.New("token manquant")
	errBadHeader    = errors.New("format Authorization invalide")
	errNoSubject    = errors.New("user_id manquant")
)

// AuthRequired exige un JWT HMAC valide. L'identifiant est lu dans "user_id"
// puis dans "sub".
func AuthRequired(secret []byte, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Debug("❌ Authentification refusée", zap.Error(err), zap.String("path", c.FullPath()))
			msg := "Token invalide"
			switch {
			case errors.Is(err, errMissingToken):
				msg = "Token manquant"
			case errors.Is(err, errBadHeader):
				msg = "Format Authorization invalide"
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "Token expiré"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth renseigne user_id quand un token valide est présent, sans
// bloquer les visiteurs anonymes.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := authenticate(c.GetHeader("Authorization"), secret); err == nil {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// UserID retourne l'utilisateur authentifié, ou "" pour un visiteur.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func authenticate(header string, secret []byte) (string, error) {
	if header == "" {
		return "", errMissingToken
	}
	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || tokenString == "" {
		return "", errBadHeader
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", errNoSubject
}
