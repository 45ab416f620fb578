package product

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"kissariya_back_end/internal/catalog"
	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/models"
)

// 🔵 GET /api/me/products
// Tous les produits de la boutique, actifs ou non, du plus récent au plus ancien.
func (h *Handler) ListProducts(c *gin.Context) {
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	products, err := h.catalog.ListProductsByShop(c.Request.Context(), shop.ID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement produits")
		return
	}
	c.JSON(http.StatusOK, products)
}

// 🟢 POST /api/me/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Produit invalide : nom et prix obligatoires"})
		return
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	if !h.checkCategory(c, shop, input) {
		return
	}

	p, err := h.catalog.CreateProduct(c.Request.Context(), shop.ID, input)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur création produit")
		return
	}
	h.syncProduct(c.Request.Context(), shop, p)
	c.JSON(http.StatusCreated, p)
}

// 🟡 PUT /api/me/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlers.ParseID(c, "id")
	if !ok {
		return
	}
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Produit invalide : nom et prix obligatoires"})
		return
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	if !h.checkCategory(c, shop, input) {
		return
	}

	p, err := h.catalog.UpdateProduct(c.Request.Context(), shop.ID, id, input)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur mise à jour produit")
		return
	}
	h.syncProduct(c.Request.Context(), shop, p)
	c.JSON(http.StatusOK, p)
}

// 🔴 DELETE /api/me/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlers.ParseID(c, "id")
	if !ok {
		return
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.catalog.DeleteProduct(ctx, shop.ID, id); err != nil {
		handlers.RespondError(c, h.log, err, "Erreur suppression produit")
		return
	}
	h.syncProduct(ctx, shop, models.Product{ID: id, ShopID: shop.ID})
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// checkCategory refuse une catégorie qui n'appartient pas à la boutique, et une
// sous-catégorie hors de la catégorie choisie.
func (h *Handler) checkCategory(c *gin.Context, shop models.Shop, in models.ProductInput) bool {
	if in.CategoryID == "" {
		if in.SubcategoryID != "" {
			handlers.RespondError(c, h.log, fmt.Errorf("%w: subcategory_id sans category_id", catalog.ErrInvalidInput), "")
			return false
		}
		return true
	}
	id, err := gocql.ParseUUID(in.CategoryID)
	if err != nil {
		handlers.RespondError(c, h.log, fmt.Errorf("%w: category_id", catalog.ErrInvalidInput), "")
		return false
	}
	ctx := c.Request.Context()
	if _, err := h.catalog.CategoryByID(ctx, shop.ID, id); err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement catégorie")
		return false
	}
	if in.SubcategoryID == "" {
		return true
	}

	subID, err := gocql.ParseUUID(in.SubcategoryID)
	if err != nil {
		handlers.RespondError(c, h.log, fmt.Errorf("%w: subcategory_id", catalog.ErrInvalidInput), "")
		return false
	}
	subs, err := h.catalog.ListSubcategories(ctx, id)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement sous-catégories")
		return false
	}
	for _, s := range subs {
		if s.ID == subID {
			return true
		}
	}
	handlers.RespondError(c, h.log, fmt.Errorf("sous-catégorie %s: %w", subID, catalog.ErrNotFound), "")
	return false
}
