package product

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/storage"
)

// 🟢 POST /api/me/images
// Formulaire multipart : "file" et "kind" (logo, cover ou product).
func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}
	defer file.Close()

	kind := c.DefaultPostForm("kind", storage.KindProduct)

	shop, ok := handlers.CurrentShop(c, h.catalog, h.log)
	if !ok {
		return
	}

	upload, err := h.images.Put(c.Request.Context(), shop.ID.String(), kind, header.Filename, file, header.Size)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, upload)
	case errors.Is(err, storage.ErrInvalidKind), errors.Is(err, storage.ErrUnsupportedExt):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image trop volumineuse (5 Mo maximum)"})
	case errors.Is(err, storage.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upload d'images indisponible"})
	default:
		handlers.RespondError(c, h.log, err, "Erreur upload image")
	}
}
