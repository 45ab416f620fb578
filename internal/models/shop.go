package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Shop struct {
	ID             gocql.UUID `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	LogoURL        string     `json:"logo_url"`
	CoverURL       string     `json:"cover_url"`
	WhatsAppNumber string     `json:"whatsapp_number"`
	Slug           string     `json:"slug"`
	LocationCity   string     `json:"location_city"`
	LocationURL    string     `json:"location_url"`
	ShowLocation   bool       `json:"show_location"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ShopSummary est la partie publique d'une boutique affichée avec ses produits.
type ShopSummary struct {
	ID             gocql.UUID `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	LogoURL        string     `json:"logo_url"`
	WhatsAppNumber string     `json:"whatsapp_number"`
	UserID         string     `json:"user_id"`
	LocationCity   string     `json:"location_city"`
	LocationURL    string     `json:"location_url"`
	ShowLocation   bool       `json:"show_location"`
}

func (s Shop) Summary() ShopSummary {
	return ShopSummary{
		ID:             s.ID,
		Name:           s.Name,
		Slug:           s.Slug,
		LogoURL:        s.LogoURL,
		WhatsAppNumber: s.WhatsAppNumber,
		UserID:         s.UserID,
		LocationCity:   s.LocationCity,
		LocationURL:    s.LocationURL,
		ShowLocation:   s.ShowLocation,
	}
}

// RankedShop est une boutique avec son nombre total de vues produits.
type RankedShop struct {
	Shop
	ProductViews int64 `json:"product_views"`
}

type ShopInput struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	LogoURL        string `json:"logo_url"`
	CoverURL       string `json:"cover_url"`
	WhatsAppNumber string `json:"whatsapp_number" binding:"required"`
	Slug           string `json:"slug"`
	LocationCity   string `json:"location_city"`
	LocationURL    string `json:"location_url"`
	ShowLocation   bool   `json:"show_location"`
}
