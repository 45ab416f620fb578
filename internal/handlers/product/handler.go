package product

import (
	"context"
	"io"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/models"
	"kissariya_back_end/internal/search"
	"kissariya_back_end/internal/storage"
)

// Catalog est la partie du repository utilisée par l'espace marchand.
type Catalog interface {
	handlers.ShopFinder

	ListCategories(ctx context.Context, shopID gocql.UUID) ([]models.Category, error)
	CreateCategory(ctx context.Context, shopID gocql.UUID, name string) (models.Category, error)
	CategoryByID(ctx context.Context, shopID, id gocql.UUID) (models.Category, error)
	RenameCategory(ctx context.Context, shopID, id gocql.UUID, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, shopID, id gocql.UUID) error

	ListSubcategories(ctx context.Context, categoryID gocql.UUID) ([]models.Subcategory, error)
	CreateSubcategory(ctx context.Context, categoryID gocql.UUID, name string) (models.Subcategory, error)
	RenameSubcategory(ctx context.Context, categoryID, id gocql.UUID, name string) (models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, categoryID, id gocql.UUID) error

	ListProductsByShop(ctx context.Context, shopID gocql.UUID) ([]models.Product, error)
	CreateProduct(ctx context.Context, shopID gocql.UUID, in models.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, shopID, id gocql.UUID, in models.ProductInput) (models.Product, error)
	DeleteProduct(ctx context.Context, shopID, id gocql.UUID) error
}

// Indexer tient l'index de recherche à jour.
type Indexer interface {
	Put(ctx context.Context, doc search.Document) error
	Delete(ctx context.Context, id string) error
}

// FeedInvalidator vide le cache de la page Explorer.
type FeedInvalidator interface {
	Invalidate(ctx context.Context)
}

// ImageStore range les images envoyées par les marchands.
type ImageStore interface {
	Put(ctx context.Context, shopID, kind, filename string, r io.Reader, size int64) (storage.Upload, error)
}

// Handler sert les catégories, produits et images de l'espace marchand.
type Handler struct {
	catalog Catalog
	index   Indexer
	feed    FeedInvalidator
	images  ImageStore
	log     *zap.Logger
}

func NewHandler(catalog Catalog, index Indexer, feed FeedInvalidator, images ImageStore, log *zap.Logger) *Handler {
	return &Handler{catalog: catalog, index: index, feed: feed, images: images, log: log}
}

// syncProduct propage une modification vers la recherche et le flux Explorer.
// Les échecs sont journalisés : la base reste la référence.
func (h *Handler) syncProduct(ctx context.Context, shop models.Shop, p models.Product) {
	defer h.feed.Invalidate(ctx)

	if !p.IsActive {
		if err := h.index.Delete(ctx, p.ID.String()); err != nil {
			h.log.Warn("⚠️ Désindexation produit", zap.String("product_id", p.ID.String()), zap.Error(err))
		}
		return
	}

	category := ""
	if p.CategoryID != nil {
		if c, err := h.catalog.CategoryByID(ctx, shop.ID, *p.CategoryID); err == nil {
			category = c.Name
		}
	}
	if err := h.index.Put(ctx, search.NewDocument(p, shop, category)); err != nil {
		h.log.Warn("⚠️ Indexation produit", zap.String("product_id", p.ID.String()), zap.Error(err))
	}
}
