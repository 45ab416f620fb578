package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"kissariya_back_end/internal/catalog"
	"kissariya_back_end/internal/middleware"
	"kissariya_back_end/internal/models"
)

// ShopFinder retrouve la boutique d'un marchand.
type ShopFinder interface {
	ShopByUser(ctx context.Context, userID string) (models.Shop, error)
}

// RespondError traduit les erreurs du catalogue en réponses HTTP.
func RespondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Introuvable"})
	case errors.Is(err, catalog.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Ce lien est déjà utilisé par une autre boutique"})
	case errors.Is(err, catalog.ErrShopExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà une boutique"})
	case errors.Is(err, catalog.ErrEmptySlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom de la boutique doit contenir des lettres ou des chiffres"})
	case errors.Is(err, catalog.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("❌ "+fallback, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// ParseID lit un identifiant UUID dans l'URL.
func ParseID(c *gin.Context, param string) (gocql.UUID, bool) {
	id, err := gocql.ParseUUID(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return gocql.UUID{}, false
	}
	return id, true
}

// CurrentShop charge la boutique du marchand connecté.
func CurrentShop(c *gin.Context, shops ShopFinder, log *zap.Logger) (models.Shop, bool) {
	shop, err := shops.ShopByUser(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune boutique pour ce compte"})
		return models.Shop{}, false
	}
	if err != nil {
		RespondError(c, log, err, "Erreur chargement boutique")
		return models.Shop{}, false
	}
	return shop, true
}
