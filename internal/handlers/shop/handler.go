package shop

import (
	"context"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"kissariya_back_end/internal/handlers"
	"kissariya_back_end/internal/models"
	"kissariya_back_end/internal/search"
	"kissariya_back_end/internal/stats"
)

// Catalog est la partie du repository utilisée par les pages boutiques.
type Catalog interface {
	handlers.ShopFinder

	CreateShop(ctx context.Context, userID string, in models.ShopInput) (models.Shop, error)
	UpdateShop(ctx context.Context, shop models.Shop, in models.ShopInput) (models.Shop, error)
	ShopByID(ctx context.Context, id gocql.UUID) (models.Shop, error)
	ShopBySlug(ctx context.Context, slug string) (models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)

	ListCategories(ctx context.Context, shopID gocql.UUID) ([]models.Category, error)
	ListSubcategories(ctx context.Context, categoryID gocql.UUID) ([]models.Subcategory, error)
	ListProductsByShop(ctx context.Context, shopID gocql.UUID) ([]models.Product, error)
	Product(ctx context.Context, id gocql.UUID) (models.Product, error)
}

// Views compte les visites des boutiques et des produits.
type Views interface {
	RecordShopView(ctx context.Context, shopID gocql.UUID) error
	RecordProductView(ctx context.Context, shopID, productID gocql.UUID) error
	ShopStats(ctx context.Context, shopID gocql.UUID) (stats.ShopStats, error)
	ProductViewsByShop(ctx context.Context) (map[gocql.UUID]int64, error)
}

// Feed fournit les produits récents de la page Explorer.
type Feed interface {
	Latest(ctx context.Context) ([]models.ExploreProduct, error)
	Invalidate(ctx context.Context)
}

// Searcher interroge l'index plein texte.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Document, error)
}

type Deps struct {
	Catalog       Catalog
	Views         Views
	Feed          Feed
	Search        Searcher
	PublicBaseURL string
	Log           *zap.Logger
}

// Handler sert les boutiques (publiques et espace marchand), Explorer et la recherche.
type Handler struct {
	catalog Catalog
	views   Views
	feed    Feed
	search  Searcher
	baseURL string
	log     *zap.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		catalog: d.Catalog,
		views:   d.Views,
		feed:    d.Feed,
		search:  d.Search,
		baseURL: d.PublicBaseURL,
		log:     d.Log,
	}
}

// CatalogURL est l'adresse publique du catalogue d'une boutique.
func (h *Handler) CatalogURL(slug string) string {
	return h.baseURL + "/c/" + slug
}
