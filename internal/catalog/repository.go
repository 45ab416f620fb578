package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"kissariya_back_end/internal/models"
)

const shopColumns = `shop_id, user_id, name, description, logo_url, cover_url, whatsapp_number, slug,
	location_city, location_url, show_location, created_at, updated_at`

const productColumns = `product_id, shop_id, category_id, subcategory_id, name, description, price,
	original_price, is_promotion, image_url, is_active, location_city, location_url, show_location,
	created_at, updated_at`

// Repository lit et écrit le catalogue dans ScyllaDB.
type Repository struct {
	session *gocql.Session
}

func NewRepository(session *gocql.Session) *Repository {
	return &Repository{session: session}
}

// =============================================
// BOUTIQUES
// =============================================

// CreateShop crée la boutique d'un marchand. Le slug est généré depuis le nom s'il est vide.
func (r *Repository) CreateShop(ctx context.Context, userID string, in models.ShopInput) (models.Shop, error) {
	if _, err := r.ShopByUser(ctx, userID); err == nil {
		return models.Shop{}, ErrShopExists
	} else if !errors.Is(err, ErrNotFound) {
		return models.Shop{}, err
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		return models.Shop{}, ErrEmptySlug
	}

	now := time.Now().UTC()
	shop := models.Shop{
		ID:        gocql.TimeUUID(),
		UserID:    userID,
		Slug:      slug,
		CreatedAt: now,
	}
	applyShopInput(&shop, in, now)

	if err := r.claimSlug(ctx, slug, shop.ID); err != nil {
		return models.Shop{}, err
	}
	if err := r.writeShop(ctx, shop); err != nil {
		return models.Shop{}, err
	}
	if err := r.session.Query(`INSERT INTO shops_by_user (user_id, shop_id) VALUES (?, ?)`, userID, shop.ID).
		WithContext(ctx).Exec(); err != nil {
		return models.Shop{}, fmt.Errorf("index boutique/utilisateur: %w", err)
	}
	return shop, nil
}

// UpdateShop met à jour la boutique ; un nouveau slug doit être libre.
func (r *Repository) UpdateShop(ctx context.Context, shop models.Shop, in models.ShopInput) (models.Shop, error) {
	newSlug := Slugify(in.Slug)
	if newSlug != "" && newSlug != shop.Slug {
		if err := r.claimSlug(ctx, newSlug, shop.ID); err != nil {
			return models.Shop{}, err
		}
		if err := r.session.Query(`DELETE FROM shops_by_slug WHERE slug = ?`, shop.Slug).WithContext(ctx).Exec(); err != nil {
			return models.Shop{}, fmt.Errorf("libération ancien slug: %w", err)
		}
		shop.Slug = newSlug
	}

	applyShopInput(&shop, in, time.Now().UTC())
	if err := r.writeShop(ctx, shop); err != nil {
		return models.Shop{}, err
	}
	return shop, nil
}

func (r *Repository) ShopByID(ctx context.Context, id gocql.UUID) (models.Shop, error) {
	q := r.session.Query(`SELECT `+shopColumns+` FROM shops WHERE shop_id = ?`, id).WithContext(ctx)
	shop, err := scanShop(q.Scan)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Shop{}, ErrNotFound
	}
	if err != nil {
		return models.Shop{}, fmt.Errorf("lecture boutique %s: %w", id, err)
	}
	return shop, nil
}

func (r *Repository) ShopByUser(ctx context.Context, userID string) (models.Shop, error) {
	var id gocql.UUID
	err := r.session.Query(`SELECT shop_id FROM shops_by_user WHERE user_id = ?`, userID).WithContext(ctx).Scan(&id)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Shop{}, ErrNotFound
	}
	if err != nil {
		return models.Shop{}, fmt.Errorf("boutique de l'utilisateur: %w", err)
	}
	return r.ShopByID(ctx, id)
}

func (r *Repository) ShopBySlug(ctx context.Context, slug string) (models.Shop, error) {
	var id gocql.UUID
	err := r.session.Query(`SELECT shop_id FROM shops_by_slug WHERE slug = ?`, strings.ToLower(slug)).WithContext(ctx).Scan(&id)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Shop{}, ErrNotFound
	}
	if err != nil {
		return models.Shop{}, fmt.Errorf("boutique par slug: %w", err)
	}
	return r.ShopByID(ctx, id)
}

func (r *Repository) ListShops(ctx context.Context) ([]models.Shop, error) {
	iter := r.session.Query(`SELECT ` + shopColumns + ` FROM shops`).WithContext(ctx).Iter()
	shops := []models.Shop{}
	for {
		shop, err := scanShop(func(dest ...interface{}) error {
			if !iter.Scan(dest...) {
				return errEndOfIter
			}
			return nil
		})
		if err != nil {
			break
		}
		shops = append(shops, shop)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste des boutiques: %w", err)
	}
	return shops, nil
}

// claimSlug réserve le slug par une transaction légère (IF NOT EXISTS).
func (r *Repository) claimSlug(ctx context.Context, slug string, shopID gocql.UUID) error {
	existing := map[string]interface{}{}
	applied, err := r.session.Query(`INSERT INTO shops_by_slug (slug, shop_id) VALUES (?, ?) IF NOT EXISTS`, slug, shopID).
		WithContext(ctx).MapScanCAS(existing)
	if err != nil {
		return fmt.Errorf("réservation slug %s: %w", slug, err)
	}
	if !applied {
		if owner, ok := existing["shop_id"].(gocql.UUID); ok && owner == shopID {
			return nil
		}
		return ErrSlugTaken
	}
	return nil
}

func (r *Repository) writeShop(ctx context.Context, s models.Shop) error {
	err := r.session.Query(`INSERT INTO shops (`+shopColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Name, s.Description, s.LogoURL, s.CoverURL, s.WhatsAppNumber, s.Slug,
		s.LocationCity, s.LocationURL, s.ShowLocation, s.CreatedAt, s.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("écriture boutique: %w", err)
	}
	return nil
}

func applyShopInput(s *models.Shop, in models.ShopInput, now time.Time) {
	s.Name = strings.TrimSpace(in.Name)
	s.Description = strings.TrimSpace(in.Description)
	s.LogoURL = in.LogoURL
	s.CoverURL = in.CoverURL
	s.WhatsAppNumber = strings.TrimSpace(in.WhatsAppNumber)
	s.LocationCity = in.LocationCity
	s.LocationURL = in.LocationURL
	s.ShowLocation = in.ShowLocation
	s.UpdatedAt = now
}

var errEndOfIter = errors.New("fin de l'itération")

func scanShop(scan func(dest ...interface{}) error) (models.Shop, error) {
	var s models.Shop
	err := scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.LogoURL, &s.CoverURL, &s.WhatsAppNumber, &s.Slug,
		&s.LocationCity, &s.LocationURL, &s.ShowLocation, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// =============================================
// CATÉGORIES & SOUS-CATÉGORIES
// =============================================

// ListCategories retourne les catégories d'une boutique triées par sort_order.
func (r *Repository) ListCategories(ctx context.Context, shopID gocql.UUID) ([]models.Category, error) {
	iter := r.session.Query(`SELECT category_id, name, sort_order, created_at, updated_at FROM categories WHERE shop_id = ?`, shopID).
		WithContext(ctx).Iter()

	categories := []models.Category{}
	var c models.Category
	for iter.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt) {
		c.ShopID = shopID
		categories = append(categories, c)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste des catégories: %w", err)
	}
	slices.SortStableFunc(categories, func(a, b models.Category) int { return a.SortOrder - b.SortOrder })
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, shopID gocql.UUID, name string) (models.Category, error) {
	existing, err := r.ListCategories(ctx, shopID)
	if err != nil {
		return models.Category{}, err
	}
	orders := make([]int, 0, len(existing))
	for _, c := range existing {
		orders = append(orders, c.SortOrder)
	}

	now := time.Now().UTC()
	c := models.Category{
		ID:        gocql.TimeUUID(),
		ShopID:    shopID,
		Name:      strings.TrimSpace(name),
		SortOrder: models.NextSortOrder(orders),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = r.session.Query(`INSERT INTO categories (shop_id, category_id, name, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ShopID, c.ID, c.Name, c.SortOrder, c.CreatedAt, c.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return models.Category{}, fmt.Errorf("création catégorie: %w", err)
	}
	return c, nil
}

func (r *Repository) CategoryByID(ctx context.Context, shopID, id gocql.UUID) (models.Category, error) {
	c := models.Category{ID: id, ShopID: shopID}
	err := r.session.Query(`SELECT name, sort_order, created_at, updated_at FROM categories WHERE shop_id = ? AND category_id = ?`, shopID, id).
		WithContext(ctx).Scan(&c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("lecture catégorie: %w", err)
	}
	return c, nil
}

func (r *Repository) RenameCategory(ctx context.Context, shopID, id gocql.UUID, name string) (models.Category, error) {
	c, err := r.CategoryByID(ctx, shopID, id)
	if err != nil {
		return models.Category{}, err
	}
	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = time.Now().UTC()
	err = r.session.Query(`UPDATE categories SET name = ?, updated_at = ? WHERE shop_id = ? AND category_id = ?`,
		c.Name, c.UpdatedAt, shopID, id).WithContext(ctx).Exec()
	if err != nil {
		return models.Category{}, fmt.Errorf("mise à jour catégorie: %w", err)
	}
	return c, nil
}

// DeleteCategory supprime la catégorie et toutes ses sous-catégories.
func (r *Repository) DeleteCategory(ctx context.Context, shopID, id gocql.UUID) error {
	if _, err := r.CategoryByID(ctx, shopID, id); err != nil {
		return err
	}
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM categories WHERE shop_id = ? AND category_id = ?`, shopID, id)
	batch.Query(`DELETE FROM subcategories WHERE category_id = ?`, id)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("suppression catégorie: %w", err)
	}
	return nil
}

func (r *Repository) ListSubcategories(ctx context.Context, categoryID gocql.UUID) ([]models.Subcategory, error) {
	iter := r.session.Query(`SELECT subcategory_id, name, sort_order, created_at, updated_at FROM subcategories WHERE category_id = ?`, categoryID).
		WithContext(ctx).Iter()

	subs := []models.Subcategory{}
	var s models.Subcategory
	for iter.Scan(&s.ID, &s.Name, &s.SortOrder, &s.CreatedAt, &s.UpdatedAt) {
		s.CategoryID = categoryID
		subs = append(subs, s)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste des sous-catégories: %w", err)
	}
	slices.SortStableFunc(subs, func(a, b models.Subcategory) int { return a.SortOrder - b.SortOrder })
	return subs, nil
}

func (r *Repository) CreateSubcategory(ctx context.Context, categoryID gocql.UUID, name string) (models.Subcategory, error) {
	existing, err := r.ListSubcategories(ctx, categoryID)
	if err != nil {
		return models.Subcategory{}, err
	}
	orders := make([]int, 0, len(existing))
	for _, s := range existing {
		orders = append(orders, s.SortOrder)
	}

	now := time.Now().UTC()
	s := models.Subcategory{
		ID:         gocql.TimeUUID(),
		CategoryID: categoryID,
		Name:       strings.TrimSpace(name),
		SortOrder:  models.NextSortOrder(orders),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = r.session.Query(`INSERT INTO subcategories (category_id, subcategory_id, name, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		s.CategoryID, s.ID, s.Name, s.SortOrder, s.CreatedAt, s.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return models.Subcategory{}, fmt.Errorf("création sous-catégorie: %w", err)
	}
	return s, nil
}

func (r *Repository) RenameSubcategory(ctx context.Context, categoryID, id gocql.UUID, name string) (models.Subcategory, error) {
	s := models.Subcategory{ID: id, CategoryID: categoryID}
	err := r.session.Query(`SELECT sort_order, created_at FROM subcategories WHERE category_id = ? AND subcategory_id = ?`, categoryID, id).
		WithContext(ctx).Scan(&s.SortOrder, &s.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Subcategory{}, ErrNotFound
	}
	if err != nil {
		return models.Subcategory{}, fmt.Errorf("lecture sous-catégorie: %w", err)
	}

	s.Name = strings.TrimSpace(name)
	s.UpdatedAt = time.Now().UTC()
	err = r.session.Query(`UPDATE subcategories SET name = ?, updated_at = ? WHERE category_id = ? AND subcategory_id = ?`,
		s.Name, s.UpdatedAt, categoryID, id).WithContext(ctx).Exec()
	if err != nil {
		return models.Subcategory{}, fmt.Errorf("mise à jour sous-catégorie: %w", err)
	}
	return s, nil
}

func (r *Repository) DeleteSubcategory(ctx context.Context, categoryID, id gocql.UUID) error {
	err := r.session.Query(`DELETE FROM subcategories WHERE category_id = ? AND subcategory_id = ?`, categoryID, id).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("suppression sous-catégorie: %w", err)
	}
	return nil
}

// =============================================
// PRODUITS
// =============================================

func (r *Repository) Product(ctx context.Context, id gocql.UUID) (models.Product, error) {
	q := r.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).WithContext(ctx)
	p, err := scanProduct(q.Scan)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("lecture produit %s: %w", id, err)
	}
	return p, nil
}

// ListProductsByShop retourne les produits d'une boutique, du plus récent au plus ancien.
func (r *Repository) ListProductsByShop(ctx context.Context, shopID gocql.UUID) ([]models.Product, error) {
	iter := r.session.Query(`SELECT product_id FROM products_by_shop WHERE shop_id = ?`, shopID).WithContext(ctx).Iter()
	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("index produits de la boutique: %w", err)
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := r.Product(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	sortNewestFirst(products)
	return products, nil
}

// ListActiveProducts retourne les limit produits actifs les plus récents, toutes boutiques confondues.
func (r *Repository) ListActiveProducts(ctx context.Context, limit int) ([]models.Product, error) {
	iter := r.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()
	products := []models.Product{}
	for {
		p, err := scanProduct(func(dest ...interface{}) error {
			if !iter.Scan(dest...) {
				return errEndOfIter
			}
			return nil
		})
		if err != nil {
			break
		}
		if p.IsActive {
			products = append(products, p)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste des produits actifs: %w", err)
	}

	sortNewestFirst(products)
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (r *Repository) CreateProduct(ctx context.Context, shopID gocql.UUID, in models.ProductInput) (models.Product, error) {
	now := time.Now().UTC()
	p := models.Product{
		ID:        gocql.TimeUUID(),
		ShopID:    shopID,
		IsActive:  true,
		CreatedAt: now,
	}
	if err := applyProductInput(&p, in, now); err != nil {
		return models.Product{}, err
	}

	if err := r.writeProduct(ctx, p); err != nil {
		return models.Product{}, err
	}
	err := r.session.Query(`INSERT INTO products_by_shop (shop_id, product_id) VALUES (?, ?)`, shopID, p.ID).WithContext(ctx).Exec()
	if err != nil {
		return models.Product{}, fmt.Errorf("index produit/boutique: %w", err)
	}
	return p, nil
}

// UpdateProduct modifie un produit de la boutique shopID.
func (r *Repository) UpdateProduct(ctx context.Context, shopID, id gocql.UUID, in models.ProductInput) (models.Product, error) {
	p, err := r.ownedProduct(ctx, shopID, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := applyProductInput(&p, in, time.Now().UTC()); err != nil {
		return models.Product{}, err
	}
	if err := r.writeProduct(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, shopID, id gocql.UUID) error {
	if _, err := r.ownedProduct(ctx, shopID, id); err != nil {
		return err
	}
	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM products WHERE product_id = ?`, id)
	batch.Query(`DELETE FROM products_by_shop WHERE shop_id = ? AND product_id = ?`, shopID, id)
	if err := r.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("suppression produit: %w", err)
	}
	return nil
}

func (r *Repository) ownedProduct(ctx context.Context, shopID, id gocql.UUID) (models.Product, error) {
	p, err := r.Product(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if p.ShopID != shopID {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (r *Repository) writeProduct(ctx context.Context, p models.Product) error {
	err := r.session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ShopID, p.CategoryID, p.SubcategoryID, p.Name, p.Description, p.Price,
		p.OriginalPrice, p.IsPromotion, models.EncodeImages(p.Images), p.IsActive,
		p.LocationCity, p.LocationURL, p.ShowLocation, p.CreatedAt, p.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("écriture produit: %w", err)
	}
	return nil
}

// applyProductInput recopie le formulaire dans le produit.
func applyProductInput(p *models.Product, in models.ProductInput, now time.Time) error {
	categoryID, err := parseOptionalUUID(in.CategoryID)
	if err != nil {
		return fmt.Errorf("%w: category_id %q", ErrInvalidInput, in.CategoryID)
	}
	subcategoryID, err := parseOptionalUUID(in.SubcategoryID)
	if err != nil {
		return fmt.Errorf("%w: subcategory_id %q", ErrInvalidInput, in.SubcategoryID)
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.OriginalPrice = in.OriginalPrice
	p.IsPromotion = in.IsPromotion
	p.CategoryID = categoryID
	p.SubcategoryID = subcategoryID
	p.Images = in.Images
	if p.Images == nil {
		p.Images = []string{}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.LocationCity = in.LocationCity
	p.LocationURL = in.LocationURL
	p.ShowLocation = in.ShowLocation
	p.UpdatedAt = now
	return nil
}

func scanProduct(scan func(dest ...interface{}) error) (models.Product, error) {
	var (
		p        models.Product
		imageURL string
	)
	err := scan(&p.ID, &p.ShopID, &p.CategoryID, &p.SubcategoryID, &p.Name, &p.Description, &p.Price,
		&p.OriginalPrice, &p.IsPromotion, &imageURL, &p.IsActive, &p.LocationCity, &p.LocationURL, &p.ShowLocation,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	p.Images = models.DecodeImages(imageURL)
	return p, nil
}

func sortNewestFirst(products []models.Product) {
	slices.SortStableFunc(products, func(a, b models.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
}

func parseOptionalUUID(s string) (*gocql.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := gocql.ParseUUID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
