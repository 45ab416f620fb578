package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kissariya_back_end/internal/catalog"
	"kissariya_back_end/internal/middleware"
	"kissariya_back_end/internal/models"
	"kissariya_back_end/internal/search"
	"kissariya_back_end/internal/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryCatalog struct {
	shops         []models.Shop
	categories    []models.Category
	subcategories []models.Subcategory
	products      []models.Product
}

func (m *memoryCatalog) ShopByUser(_ context.Context, userID string) (models.Shop, error) {
	for _, s := range m.shops {
		if s.UserID == userID {
			return s, nil
		}
	}
	return models.Shop{}, catalog.ErrNotFound
}

func (m *memoryCatalog) CreateShop(ctx context.Context, userID string, in models.ShopInput) (models.Shop, error) {
	if _, err := m.ShopByUser(ctx, userID); err == nil {
		return models.Shop{}, catalog.ErrShopExists
	}
	slug := catalog.Slugify(in.Slug)
	if slug == "" {
		slug = catalog.Slugify(in.Name)
	}
	if slug == "" {
		return models.Shop{}, catalog.ErrEmptySlug
	}
	if _, err := m.ShopBySlug(ctx, slug); err == nil {
		return models.Shop{}, catalog.ErrSlugTaken
	}
	s := models.Shop{ID: gocql.TimeUUID(), UserID: userID, Name: in.Name, Slug: slug, WhatsAppNumber: in.WhatsAppNumber}
	m.shops = append(m.shops, s)
	return s, nil
}

func (m *memoryCatalog) UpdateShop(_ context.Context, shop models.Shop, in models.ShopInput) (models.Shop, error) {
	for i := range m.shops {
		if m.shops[i].ID == shop.ID {
			m.shops[i].Name = in.Name
			m.shops[i].WhatsAppNumber = in.WhatsAppNumber
			return m.shops[i], nil
		}
	}
	return models.Shop{}, catalog.ErrNotFound
}

func (m *memoryCatalog) ShopByID(_ context.Context, id gocql.UUID) (models.Shop, error) {
	for _, s := range m.shops {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Shop{}, catalog.ErrNotFound
}

func (m *memoryCatalog) ShopBySlug(_ context.Context, slug string) (models.Shop, error) {
	for _, s := range m.shops {
		if s.Slug == slug {
			return s, nil
		}
	}
	return models.Shop{}, catalog.ErrNotFound
}

func (m *memoryCatalog) ListShops(context.Context) ([]models.Shop, error) {
	return m.shops, nil
}

func (m *memoryCatalog) ListCategories(_ context.Context, shopID gocql.UUID) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range m.categories {
		if c.ShopID == shopID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryCatalog) ListSubcategories(_ context.Context, categoryID gocql.UUID) ([]models.Subcategory, error) {
	return catalog.SubcategoriesOf(m.subcategories, categoryID), nil
}

func (m *memoryCatalog) ListProductsByShop(_ context.Context, shopID gocql.UUID) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryCatalog) Product(_ context.Context, id gocql.UUID) (models.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, catalog.ErrNotFound
}

type fakeViews struct {
	shopViews    map[gocql.UUID]int
	productViews map[gocql.UUID]int64
	err          error
}

func (f *fakeViews) RecordShopView(_ context.Context, shopID gocql.UUID) error {
	f.shopViews[shopID]++
	return nil
}

func (f *fakeViews) RecordProductView(_ context.Context, shopID, _ gocql.UUID) error {
	f.productViews[shopID]++
	return nil
}

func (f *fakeViews) ShopStats(_ context.Context, shopID gocql.UUID) (stats.ShopStats, error) {
	today := time.Now().UTC().Format("2006-01-02")
	return stats.Summarize(map[string]int64{today: int64(f.shopViews[shopID])}, time.Now(), time.UTC), nil
}

func (f *fakeViews) ProductViewsByShop(context.Context) (map[gocql.UUID]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.productViews, nil
}

type staticFeed struct {
	products    []models.ExploreProduct
	invalidated int
}

func (f *staticFeed) Latest(context.Context) ([]models.ExploreProduct, error) {
	return f.products, nil
}

func (f *staticFeed) Invalidate(context.Context) { f.invalidated++ }

type fakeSearch struct{ err error }

func (f fakeSearch) Search(_ context.Context, q string, _ int) ([]search.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []search.Document{{ID: "p1", Name: q}}, nil
}

type fixture struct {
	router  *gin.Engine
	catalog *memoryCatalog
	views   *fakeViews
	feed    *staticFeed
	shop    models.Shop
	caftan  models.Product
	cat     models.Category
	sub     models.Subcategory
}

func newFixture(t *testing.T, searcher Searcher) *fixture {
	t.Helper()
	shop := models.Shop{ID: gocql.TimeUUID(), UserID: "merchant-1", Name: "Dar Couture", Slug: "dar-couture", WhatsAppNumber: "+212 6 11 22 33 44"}
	cat := models.Category{ID: gocql.TimeUUID(), ShopID: shop.ID, Name: "Vêtements"}
	sub := models.Subcategory{ID: gocql.TimeUUID(), CategoryID: cat.ID, Name: "Caftans"}
	caftan := models.Product{ID: gocql.TimeUUID(), ShopID: shop.ID, Name: "Caftan brodé", Price: 1200, CategoryID: &cat.ID, SubcategoryID: &sub.ID, IsActive: true, IsPromotion: true}

	f := &fixture{
		catalog: &memoryCatalog{
			shops:         []models.Shop{shop},
			categories:    []models.Category{cat},
			subcategories: []models.Subcategory{sub},
			products: []models.Product{
				caftan,
				{ID: gocql.TimeUUID(), ShopID: shop.ID, Name: "Jellaba", Price: 600, CategoryID: &cat.ID, IsActive: true},
				{ID: gocql.TimeUUID(), ShopID: shop.ID, Name: "Brouillon", IsActive: false},
			},
		},
		views:  &fakeViews{shopViews: map[gocql.UUID]int{}, productViews: map[gocql.UUID]int64{}},
		feed:   &staticFeed{},
		shop:   shop,
		caftan: caftan,
		cat:    cat,
		sub:    sub,
	}
	h := NewHandler(Deps{
		Catalog:       f.catalog,
		Views:         f.views,
		Feed:          f.feed,
		Search:        searcher,
		PublicBaseURL: "https://kissariya.ma",
		Log:           zap.NewNop(),
	})

	r := gin.New()
	asUser := func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(middleware.UserIDKey, user)
		}
		c.Next()
	}
	r.Use(asUser)
	r.GET("/api/explore", h.Explore)
	r.GET("/api/search", h.Search)
	r.GET("/api/shops", h.ListShops)
	r.GET("/api/shops/:slug", h.PublicShop)
	r.GET("/api/shops/:slug/qrcode", h.QRCode)
	r.GET("/api/products/:id/inquiry", h.Inquiry)
	r.GET("/api/me/shop", h.GetMyShop)
	r.POST("/api/me/shop", h.CreateShop)
	r.PUT("/api/me/shop", h.UpdateShop)
	r.GET("/api/me/stats", h.Stats)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, user, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPublicShopCountsVisitorsButNotOwner(t *testing.T) {
	f := newFixture(t, fakeSearch{})

	w := f.do(t, "", http.MethodGet, "/api/shops/dar-couture", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page PublicShop
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))

	assert.Equal(t, "https://kissariya.ma/c/dar-couture", page.CatalogURL)
	assert.Len(t, page.Products, 2, "les produits inactifs sont masqués")
	require.Len(t, page.Promotions, 1)
	assert.Equal(t, "Caftan brodé", page.Promotions[0].Name)
	require.Len(t, page.Categories, 1)
	assert.Len(t, page.Categories[0].Subcategories, 1)
	assert.Equal(t, 1, f.views.shopViews[f.shop.ID])

	f.do(t, "merchant-1", http.MethodGet, "/api/shops/dar-couture", nil)
	assert.Equal(t, 1, f.views.shopViews[f.shop.ID])

	f.do(t, "autre-marchand", http.MethodGet, "/api/shops/dar-couture", nil)
	assert.Equal(t, 2, f.views.shopViews[f.shop.ID])
}

func TestPublicShopFilters(t *testing.T) {
	f := newFixture(t, fakeSearch{})

	w := f.do(t, "", http.MethodGet, "/api/shops/dar-couture?subcategory_id="+f.sub.ID.String(), nil)
	var page PublicShop
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, f.caftan.ID, page.Products[0].ID)

	w = f.do(t, "", http.MethodGet, "/api/shops/dar-couture?q=jell", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Jellaba", page.Products[0].Name)

	assert.Equal(t, http.StatusBadRequest, f.do(t, "", http.MethodGet, "/api/shops/dar-couture?category_id=xyz", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "", http.MethodGet, "/api/shops/inconnue", nil).Code)
}

func TestCreateShop(t *testing.T) {
	f := newFixture(t, fakeSearch{})

	w := f.do(t, "merchant-2", http.MethodPost, "/api/me/shop", gin.H{"name": "Café Épicé", "whatsapp_number": "0600000000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Shop
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "cafe-epice", created.Slug)

	assert.Equal(t, http.StatusConflict, f.do(t, "merchant-2", http.MethodPost, "/api/me/shop", gin.H{"name": "Encore", "whatsapp_number": "1"}).Code)
	assert.Equal(t, http.StatusConflict, f.do(t, "merchant-3", http.MethodPost, "/api/me/shop", gin.H{"name": "Dar Couture", "whatsapp_number": "1"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "merchant-4", http.MethodPost, "/api/me/shop", gin.H{"name": "!!!", "whatsapp_number": "1"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "merchant-5", http.MethodPost, "/api/me/shop", gin.H{"name": "Sans numéro"}).Code)
}

func TestUpdateShopInvalidatesExplore(t *testing.T) {
	f := newFixture(t, fakeSearch{})

	w := f.do(t, "merchant-1", http.MethodPut, "/api/me/shop", gin.H{"name": "Dar Couture Agadir", "whatsapp_number": "0611223344"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dar Couture Agadir")
	assert.Equal(t, 1, f.feed.invalidated)

	assert.Equal(t, http.StatusNotFound, f.do(t, "inconnu", http.MethodGet, "/api/me/shop", nil).Code)
}

func TestListShopsRankedByProductViews(t *testing.T) {
	f := newFixture(t, fakeSearch{})
	other := models.Shop{ID: gocql.TimeUUID(), Name: "Poterie Safi", Slug: "poterie-safi"}
	f.catalog.shops = append(f.catalog.shops, other)
	f.views.productViews[other.ID] = 9
	f.views.productViews[f.shop.ID] = 2

	w := f.do(t, "", http.MethodGet, "/api/shops", nil)
	var ranked []models.RankedShop
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "poterie-safi", ranked[0].Slug)
	assert.Equal(t, int64(9), ranked[0].ProductViews)

	f.views.err = errors.New("scylla indisponible")
	w = f.do(t, "", http.MethodGet, "/api/shops?q=dar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	require.Len(t, ranked, 1)
	assert.Zero(t, ranked[0].ProductViews)
}

func TestInquiryRecordsProductView(t *testing.T) {
	f := newFixture(t, fakeSearch{})

	w := f.do(t, "", http.MethodGet, "/api/products/"+f.caftan.ID.String()+"/inquiry", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Product models.ProductDescriptor `json:"product"`
		Message string                   `json:"message"`
		URL     string                   `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Dar Couture", out.Product.ShopName)
	assert.Contains(t, out.Message, "*Caftan brodé*")
	require.True(t, strings.HasPrefix(out.URL, "https://wa.me/212611223344?text="))
	decoded, err := url.QueryUnescape(strings.TrimPrefix(out.URL, "https://wa.me/212611223344?text="))
	require.NoError(t, err)
	assert.Equal(t, out.Message, decoded)
	assert.Equal(t, int64(1), f.views.productViews[f.shop.ID])

	// Le propriétaire ne gonfle pas ses propres compteurs.
	w = f.do(t, "merchant-1", http.MethodGet, "/api/products/"+f.caftan.ID.String()+"/inquiry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), f.views.productViews[f.shop.ID])

	f.do(t, "autre-marchand", http.MethodGet, "/api/products/"+f.caftan.ID.String()+"/inquiry", nil)
	assert.Equal(t, int64(2), f.views.productViews[f.shop.ID])

	inactive := f.catalog.products[2].ID
	assert.Equal(t, http.StatusNotFound, f.do(t, "", http.MethodGet, "/api/products/"+inactive.String()+"/inquiry", nil).Code)
}

func TestInquiryFromCatalog(t *testing.T) {
	f := newFixture(t, fakeSearch{})
	original := 1500.0
	f.catalog.products[0].OriginalPrice = &original

	w := f.do(t, "", http.MethodGet, "/api/products/"+f.caftan.ID.String()+"/inquiry?from=catalog", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, out.Message, "📦 *Caftan brodé*")
	assert.Contains(t, out.Message, "💰 Prix: 1200 DH")
	assert.Contains(t, out.Message, "🏷️ (Au lieu de 1500 DH)")
	assert.NotContains(t, out.Message, "KissariyaMaroc")
}

func TestStats(t *testing.T) {
	f := newFixture(t, fakeSearch{})
	f.do(t, "", http.MethodGet, "/api/shops/dar-couture", nil)
	f.do(t, "", http.MethodGet, "/api/shops/dar-couture", nil)
	f.do(t, "", http.MethodGet, "/api/products/"+f.caftan.ID.String()+"/inquiry", nil)

	w := f.do(t, "merchant-1", http.MethodGet, "/api/me/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		TotalViews   int64              `json:"total_views"`
		TodayViews   int64              `json:"today_views"`
		Daily        []stats.DailyViews `json:"daily"`
		ProductViews int64              `json:"product_views"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, int64(2), out.TotalViews)
	assert.Equal(t, int64(2), out.TodayViews)
	assert.Len(t, out.Daily, stats.StatsDays)
	assert.Equal(t, int64(1), out.ProductViews)
}

func TestExplore(t *testing.T) {
	f := newFixture(t, fakeSearch{})
	f.feed.products = []models.ExploreProduct{
		{Product: models.Product{Name: "Caftan", Price: 1200}, Shop: models.ShopSummary{Name: "Dar Couture"}, CategoryName: "Vêtements"},
		{Product: models.Product{Name: "Tajine", Price: 75}, Shop: models.ShopSummary{Name: "Poterie Safi"}, CategoryName: "Maison"},
	}

	w := f.do(t, "", http.MethodGet, "/api/explore?sort=price-asc", nil)
	var out struct {
		Products   []models.ExploreProduct `json:"products"`
		Categories []string                `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Products, 2)
	assert.Equal(t, "Tajine", out.Products[0].Name)
	assert.Equal(t, []string{"Vêtements", "Maison"}, out.Categories)

	w = f.do(t, "", http.MethodGet, "/api/explore?q=poterie&shuffle=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Products, 1)
	assert.Len(t, out.Categories, 2, "les catégories ne dépendent pas des filtres")
}

func TestSearch(t *testing.T) {
	f := newFixture(t, fakeSearch{})
	w := f.do(t, "", http.MethodGet, "/api/search?q=caftan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"caftan"`)

	disabled := newFixture(t, fakeSearch{err: search.ErrDisabled})
	assert.Equal(t, http.StatusServiceUnavailable, disabled.do(t, "", http.MethodGet, "/api/search?q=x", nil).Code)
}

func TestQRCode(t *testing.T) {
	f := newFixture(t, fakeSearch{})

	w := f.do(t, "", http.MethodGet, "/api/shops/dar-couture/qrcode", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusNotFound, f.do(t, "", http.MethodGet, "/api/shops/inconnue/qrcode", nil).Code)
}
