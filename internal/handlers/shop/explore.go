package shop

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"kissariya_back_end/internal/catalog"
	"kissariya_back_end/internal/checkout"
	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/middleware"
	"kissariya_back_end/internal/search"
)

// QRCodeSize est la taille en pixels du QR code d'une boutique.
const QRCodeSize = 512

// 🔍 GET /api/explore?q=&category=&sort=&shuffle=
func (h *Handler) Explore(c *gin.Context) {
	products, err := h.feed.Latest(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement Explorer")
		return
	}

	if shuffle, _ := strconv.ParseBool(c.Query("shuffle")); shuffle {
		products = catalog.Shuffle(products)
	}
	filtered := catalog.FilterExplore(products, catalog.ExploreQuery{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	})

	c.JSON(http.StatusOK, gin.H{
		"products":   filtered,
		"categories": catalog.ExploreCategories(products),
	})
}

// 🔍 GET /api/search?q=
func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	docs, err := h.search.Search(c.Request.Context(), c.Query("q"), limit)
	if errors.Is(err, search.ErrDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recherche indisponible"})
		return
	}
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur recherche")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": docs})
}

// Origines possibles d'une demande produit.
const (
	InquiryFromExplore = "explore"
	InquiryFromCatalog = "catalog"
)

// 💬 GET /api/products/:id/inquiry?from=explore|catalog
// Lien WhatsApp pour se renseigner sur un produit. Compte une vue produit sauf pour le propriétaire.
func (h *Handler) Inquiry(c *gin.Context) {
	id, ok := handlers.ParseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	p, err := h.catalog.Product(ctx, id)
	if err == nil && !p.IsActive {
		err = catalog.ErrNotFound
	}
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement produit")
		return
	}
	shop, err := h.catalog.ShopByID(ctx, p.ShopID)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement boutique")
		return
	}

	if visitor := middleware.UserID(c); visitor == "" || visitor != shop.UserID {
		if err := h.views.RecordProductView(ctx, shop.ID, p.ID); err != nil {
			h.log.Warn("⚠️ Vue produit non comptée", zap.String("product_id", p.ID.String()), zap.Error(err))
		}
	}

	var message, link string
	switch c.DefaultQuery("from", InquiryFromExplore) {
	case InquiryFromCatalog:
		message, link = checkout.CatalogInquiry(p, shop.WhatsAppNumber)
	default:
		message, link = checkout.ProductInquiry(p.Name, shop.WhatsAppNumber)
	}
	c.JSON(http.StatusOK, gin.H{
		"product": p.Descriptor(shop),
		"message": message,
		"url":     link,
	})
}

// 📱 GET /api/shops/:slug/qrcode
func (h *Handler) QRCode(c *gin.Context) {
	shop, err := h.catalog.ShopBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur chargement boutique")
		return
	}
	png, err := qrcode.Encode(h.CatalogURL(shop.Slug), qrcode.Medium, QRCodeSize)
	if err != nil {
		handlers.RespondError(c, h.log, err, "Erreur génération QR code")
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+shop.Slug+`-qrcode.png"`)
	c.Data(http.StatusOK, "image/png", png)
}
