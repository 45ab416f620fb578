package shop

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"kissariya_back_end/internal/catalog"
	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/middleware"
	"kissariya_back_end/internal/models"
)

// PublicCategory est une catégorie du catalogue public avec ses sous-catégories.
type PublicCategory struct {
	models.Category
	Subcategories []models.Subcategory `json:"subcategories"`
}

// PublicShop est la page catalogue d'une boutique.
type PublicShop struct {
	Shop       models.Shop      `json:"shop"`
	CatalogURL string           `json:"catalog_url"`
	Categories []PublicCategory `json:"categories"`
	Products   []models.Product `json:"products"`
	Promotions []models.Product `json:"promotions"`
}

// 🔵 GET /api/me/shop
func (h *Handler) GetMyShop(c *gin.Context) {
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

// 🟢 POST /api/me/shop
func (h *Handler) CreateShop(c *gin.Context) {
	var input models.ShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom et numéro WhatsApp obligatoires"})
		return
	}
	shop, err := h.catalog.CreateShop(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur création boutique")
		return
	}
	h.log.Info("🏪 Boutique créée", zap.String("slug", shop.Slug), zap.String("user_id", shop.UserID))
	c.JSON(http.StatusCreated, shop)
}

// 🟡 PUT /api/me/shop
func (h *Handler) UpdateShop(c *gin.Context) {
	var input models.ShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom et numéro WhatsApp obligatoires"})
		return
	}
	current, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	shop, err := h.catalog.UpdateShop(c.Request.Context(), current, input)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur mise à jour boutique")
		return
	}
	h.feed.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, shop)
}

// 📊 GET /api/me/stats
func (h *Handler) Stats(c *gin.Context) {
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	shopStats, err := h.views.ShopStats(ctx, shop.ID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement statistiques")
		return
	}
	productViews, err := h.views.ProductViewsByShop(ctx)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement statistiques")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_views":   shopStats.TotalViews,
		"today_views":   shopStats.TodayViews,
		"daily":         shopStats.Daily,
		"product_views": productViews[shop.ID],
	})
}

// 🔵 GET /api/shops?q=
// Boutiques classées par nombre de vues produits.
func (h *Handler) ListShops(c *gin.Context) {
	ctx := c.Request.Context()
	shops, err := h.catalog.ListShops(ctx)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement boutiques")
		return
	}
	views, err := h.views.ProductViewsByShop(ctx)
	if err != nil {
		h.log.Warn("⚠️ Vues produits indisponibles, classement neutre", zap.Error(err))
		views = map[gocql.UUID]int64{}
	}
	c.JSON(http.StatusOK, catalog.RankShops(shops, views, c.Query("q")))
}

// 🔵 GET /api/shops/:slug?q=&category_id=&subcategory_id=
// Catalogue public. La visite est comptée sauf pour le propriétaire.
func (h *Handler) PublicShop(c *gin.Context) {
	categoryID, err := optionalUUID(c.Query("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filtre catégorie invalide"})
		return
	}
	subcategoryID, err := optionalUUID(c.Query("subcategory_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filtre sous-catégorie invalide"})
		return
	}
	query := catalog.CatalogQuery{Search: c.Query("q"), CategoryID: categoryID, SubcategoryID: subcategoryID}

	ctx := c.Request.Context()
	shop, err := h.catalog.ShopBySlug(ctx, c.Param("slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Boutique introuvable"})
		return
	}
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement boutique")
		return
	}

	categories, err := h.catalog.ListCategories(ctx, shop.ID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement catégories")
		return
	}
	tree := make([]PublicCategory, 0, len(categories))
	for _, cat := range categories {
		subs, err := h.catalog.ListSubcategories(ctx, cat.ID)
		if err != nil {
			handlers.RespondError(c, h.log, err, "Erreur chargement sous-catégories")
			return
		}
		tree = append(tree, PublicCategory{Category: cat, Subcategories: subs})
	}

	products, err := h.catalog.ListProductsByShop(ctx, shop.ID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement produits")
		return
	}
	active := catalog.ActiveOnly(products)

	if visitor := middleware.UserID(c); visitor == "" || visitor != shop.UserID {
		if err := h.views.RecordShopView(ctx, shop.ID); err != nil {
			h.log.Warn("⚠️ Visite non comptée", zap.String("slug", shop.Slug), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, PublicShop{
		Shop:       shop,
		CatalogURL: h.CatalogURL(shop.Slug),
		Categories: tree,
		Products:   catalog.FilterCatalog(active, query),
		Promotions: catalog.Promotions(active),
	})
}

func optionalUUID(raw string) (*gocql.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := gocql.ParseUUID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
