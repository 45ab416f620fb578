package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/models"
)

type nameInput struct {
	Name string `json:"name" binding:"required"`
}

// CategoryTree est une catégorie avec ses sous-catégories.
type CategoryTree struct {
	models.Category
	Subcategories []models.Subcategory `json:"subcategories"`
}

// 🔵 GET /api/me/categories
func (h *Handler) ListCategories(c *gin.Context) {
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	categories, err := h.catalog.ListCategories(ctx, shop.ID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement catégories")
		return
	}
	tree := make([]CategoryTree, 0, len(categories))
	for _, cat := range categories {
		subs, err := h.catalog.ListSubcategories(ctx, cat.ID)
		if err != nil {
			handlers.RespondError(c, h.log, err, "Erreur chargement sous-catégories")
			return
		}
		tree = append(tree, CategoryTree{Category: cat, Subcategories: subs})
	}
	c.JSON(http.StatusOK, tree)
}

// 🟢 POST /api/me/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom est obligatoire"})
		return
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), shop.ID, input.Name)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur création catégorie")
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// 🟡 PUT /api/me/categories/:id
func (h *Handler) RenameCategory(c *gin.Context) {
	id, ok := handlers.ParseID(c, "id")
	if !ok {
		return
	}
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom est obligatoire"})
		return
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	cat, err := h.catalog.RenameCategory(c.Request.Context(), shop.ID, id, input.Name)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur mise à jour catégorie")
		return
	}
	h.feed.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, cat)
}

// 🔴 DELETE /api/me/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlers.ParseID(c, "id")
	if !ok {
		return
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), shop.ID, id); err != nil {
		handlers.RespondError(c, h.log, err, "Erreur suppression catégorie")
		return
	}
	h.feed.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}

// ownedCategory vérifie que la catégorie :id appartient à la boutique du marchand.
func (h *Handler) ownedCategory(c *gin.Context) (models.Category, bool) {
	id, ok := handlers.ParseID(c, "id")
	if !ok {
		return models.Category{}, false
	}
	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return models.Category{}, false
	}
	cat, err := h.catalog.CategoryByID(c.Request.Context(), shop.ID, id)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement catégorie")
		return models.Category{}, false
	}
	return cat, true
}

// 🔵 GET /api/me/categories/:id/subcategories
func (h *Handler) ListSubcategories(c *gin.Context) {
	cat, ok := h.ownedCategory(c)
	if !ok {
		return
	}
	subs, err := h.catalog.ListSubcategories(c.Request.Context(), cat.ID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement sous-catégories")
		return
	}
	c.JSON(http.StatusOK, subs)
}

// 🟢 POST /api/me/categories/:id/subcategories
func (h *Handler) CreateSubcategory(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom est obligatoire"})
		return
	}
	cat, ok := h.ownedCategory(c)
	if !ok {
		return
	}
	sub, err := h.catalog.CreateSubcategory(c.Request.Context(), cat.ID, input.Name)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur création sous-catégorie")
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// 🟡 PUT /api/me/categories/:id/subcategories/:subID
func (h *Handler) RenameSubcategory(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le nom est obligatoire"})
		return
	}
	subID, ok := handlers.ParseID(c, "subID")
	if !ok {
		return
	}
	cat, ok := h.ownedCategory(c)
	if !ok {
		return
	}
	sub, err := h.catalog.RenameSubcategory(c.Request.Context(), cat.ID, subID, input.Name)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur mise à jour sous-catégorie")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// 🔴 DELETE /api/me/categories/:id/subcategories/:subID
func (h *Handler) DeleteSubcategory(c *gin.Context) {
	subID, ok := handlers.ParseID(c, "subID")
	if !ok {
		return
	}
	cat, ok := h.ownedCategory(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteSubcategory(c.Request.Context(), cat.ID, subID); err != nil {
		handlers.RespondError(c, h.log, err, "Erreur suppression sous-catégorie")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sous-catégorie supprimée"})
}
