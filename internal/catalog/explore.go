package catalog

import (
	"math/rand"
	"slices"
	"strings"

	"github.com/gocql/gocql"

	"kissariya_back_end/internal/models"
)

// ExploreLimit est le nombre de produits récents chargés sur la page Explorer.
const ExploreLimit = 40

// Tris proposés sur la page Explorer.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// ExploreQuery regroupe les filtres de la page Explorer.
type ExploreQuery struct {
	Search   string
	Category string // nom de catégorie
	Sort     string
}

// FilterExplore applique la recherche (nom du produit ou de la boutique) et le
// filtre de catégorie, puis trie. La liste d'entrée n'est pas modifiée.
func FilterExplore(products []models.ExploreProduct, q ExploreQuery) []models.ExploreProduct {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.ExploreProduct, 0, len(products))
	for _, p := range products {
		matchesSearch := search == "" ||
			strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.Shop.Name), search)
		matchesCategory := q.Category == "" || p.CategoryName == q.Category
		if matchesSearch && matchesCategory {
			out = append(out, p)
		}
	}

	switch q.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.ExploreProduct) int { return compareFloat(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.ExploreProduct) int { return compareFloat(b.Price, a.Price) })
	case SortNewest:
		slices.SortStableFunc(out, func(a, b models.ExploreProduct) int { return b.CreatedAt.Compare(a.CreatedAt) })
	}
	return out
}

// ExploreCategories retourne les noms de catégorie distincts, dans l'ordre d'apparition.
func ExploreCategories(products []models.ExploreProduct) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, p := range products {
		if p.CategoryName == "" || seen[p.CategoryName] {
			continue
		}
		seen[p.CategoryName] = true
		names = append(names, p.CategoryName)
	}
	return names
}

// Shuffle mélange la kissariya.
func Shuffle[T any](items []T) []T {
	out := slices.Clone(items)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// CatalogQuery regroupe les filtres de la page publique d'une boutique.
type CatalogQuery struct {
	Search        string
	CategoryID    *gocql.UUID
	SubcategoryID *gocql.UUID
}

// FilterCatalog filtre les produits d'une boutique.
func FilterCatalog(products []models.Product, q CatalogQuery) []models.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if q.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *q.CategoryID) {
			continue
		}
		if q.SubcategoryID != nil && (p.SubcategoryID == nil || *p.SubcategoryID != *q.SubcategoryID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Promotions retourne les produits en promotion.
func Promotions(products []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.IsPromotion {
			out = append(out, p)
		}
	}
	return out
}

// ActiveOnly retourne les produits visibles publiquement.
func ActiveOnly(products []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// RankShops trie les boutiques par nombre de vues produits décroissant, puis
// filtre sur le nom ou la description.
func RankShops(shops []models.Shop, views map[gocql.UUID]int64, search string) []models.RankedShop {
	search = strings.ToLower(strings.TrimSpace(search))

	ranked := make([]models.RankedShop, 0, len(shops))
	for _, s := range shops {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Description), search) {
			continue
		}
		ranked = append(ranked, models.RankedShop{Shop: s, ProductViews: views[s.ID]})
	}
	slices.SortStableFunc(ranked, func(a, b models.RankedShop) int {
		switch {
		case a.ProductViews > b.ProductViews:
			return -1
		case a.ProductViews < b.ProductViews:
			return 1
		}
		return 0
	})
	return ranked
}

// SubcategoriesOf retourne les sous-catégories d'une catégorie.
func SubcategoriesOf(subs []models.Subcategory, categoryID gocql.UUID) []models.Subcategory {
	out := []models.Subcategory{}
	for _, s := range subs {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
