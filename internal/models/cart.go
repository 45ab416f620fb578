package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ProductDescriptor est ce que le catalogue transmet au panier (sans quantité).
type ProductDescriptor struct {
	ID             string  `json:"id" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Price          float64 `json:"price" binding:"gte=0"`
	ImageURL       *string `json:"image_url"`
	ShopID         string  `json:"shop_id" binding:"required"`
	ShopName       string  `json:"shop_name"`
	WhatsAppNumber string  `json:"whatsapp_number"`
}

// CartItem est une ligne du panier. Le format JSON est celui du stockage persistant.
type CartItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ImageURL       *string `json:"image_url"`
	Quantity       int     `json:"quantity"`
	ShopID         string  `json:"shop_id"`
	ShopName       string  `json:"shop_name"`
	WhatsAppNumber string  `json:"whatsapp_number"`
}

// NewCartItem crée une ligne à partir d'un produit, avec une quantité de 1.
func NewCartItem(p ProductDescriptor) CartItem {
	return CartItem{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		ImageURL:       p.ImageURL,
		Quantity:       1,
		ShopID:         p.ShopID,
		ShopName:       p.ShopName,
		WhatsAppNumber: p.WhatsAppNumber,
	}
}

// UnitPrice retourne le prix unitaire en décimal.
func (i CartItem) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(i.Price)
}

// LineTotal = prix unitaire × quantité
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UnmarshalJSON tolère les anciens paniers : une quantité absente ou invalide vaut 1.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	type rawItem CartItem
	var raw struct {
		rawItem
		Quantity *int `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = CartItem(raw.rawItem)
	i.Quantity = 1
	if raw.Quantity != nil && *raw.Quantity >= 1 {
		i.Quantity = *raw.Quantity
	}
	return nil
}
