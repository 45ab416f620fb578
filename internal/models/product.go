package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID            gocql.UUID  `json:"id" db:"product_id"`
	ShopID        gocql.UUID  `json:"shop_id" db:"shop_id"`
	CategoryID    *gocql.UUID `json:"category_id" db:"category_id"`
	SubcategoryID *gocql.UUID `json:"subcategory_id" db:"subcategory_id"`
	Name          string      `json:"name" db:"name"`
	Description   string      `json:"description" db:"description"`
	Price         float64     `json:"price" db:"price"`
	OriginalPrice *float64    `json:"original_price" db:"original_price"`
	IsPromotion   bool        `json:"is_promotion" db:"is_promotion"`
	Images        []string    `json:"images" db:"-"`
	IsActive      bool        `json:"is_active" db:"is_active"`
	LocationCity  string      `json:"location_city" db:"location_city"`
	LocationURL   string      `json:"location_url" db:"location_url"`
	ShowLocation  bool        `json:"show_location" db:"show_location"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// CoverImage retourne la première image du produit, ou nil.
func (p Product) CoverImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &img
}

// Descriptor construit ce que le panier attend pour ce produit.
func (p Product) Descriptor(shop Shop) ProductDescriptor {
	return ProductDescriptor{
		ID:             p.ID.String(),
		Name:           p.Name,
		Price:          p.Price,
		ImageURL:       p.CoverImage(),
		ShopID:         shop.ID.String(),
		ShopName:       shop.Name,
		WhatsAppNumber: shop.WhatsAppNumber,
	}
}

// DecodeImages lit la colonne image_url : soit une URL seule, soit un tableau JSON
// encodé dans le texte. Le résultat ne contient jamais de chaîne vide.
func DecodeImages(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err != nil {
			return []string{}
		}
		out := make([]string, 0, len(urls))
		for _, u := range urls {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
		return out
	}

	return []string{raw}
}

// EncodeImages est l'inverse de DecodeImages pour l'écriture en base.
func EncodeImages(urls []string) string {
	switch len(urls) {
	case 0:
		return ""
	case 1:
		return urls[0]
	}
	data, _ := json.Marshal(urls)
	return string(data)
}

// ExploreProduct est un produit accompagné de sa boutique et de sa catégorie (page Explorer).
type ExploreProduct struct {
	Product
	Shop         ShopSummary `json:"shop"`
	CategoryName string      `json:"category_name,omitempty"`
}

type ProductInput struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"min=0"`
	OriginalPrice *float64 `json:"original_price"`
	IsPromotion   bool     `json:"is_promotion"`
	CategoryID    string   `json:"category_id"`
	SubcategoryID string   `json:"subcategory_id"`
	Images        []string `json:"images"`
	IsActive      *bool    `json:"is_active"`
	LocationCity  string   `json:"location_city"`
	LocationURL   string   `json:"location_url"`
	ShowLocation  bool     `json:"show_location"`
}
