package cart

import (
	"github.com/shopspring/decimal"

	"kissariya_back_end/internal/models"
)

// ShopGroup est la partie du panier qui revient à une boutique.
type ShopGroup struct {
	ShopID         string            `json:"shop_id"`
	ShopName       string            `json:"shop_name"`
	WhatsAppNumber string            `json:"whatsapp_number"`
	Items          []models.CartItem `json:"items"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
}

// Snapshot est la vue du panier renvoyée aux clients.
type Snapshot struct {
	Items  []models.CartItem `json:"items"`
	Count  int               `json:"count"`
	Total  decimal.Decimal   `json:"total"`
	ByShop []ShopGroup       `json:"by_shop"`
}

// Group découpe des lignes par boutique en gardant l'ordre de première apparition.
func Group(items []models.CartItem) []ShopGroup {
	var groups []ShopGroup
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.ShopID]
		if !ok {
			i = len(groups)
			index[it.ShopID] = i
			groups = append(groups, ShopGroup{
				ShopID:         it.ShopID,
				ShopName:       it.ShopName,
				WhatsAppNumber: it.WhatsAppNumber,
			})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	for i := range groups {
		groups[i].Subtotal = Subtotal(groups[i].Items)
	}
	return groups
}

func NewSnapshot(items []models.CartItem) Snapshot {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	if items == nil {
		items = []models.CartItem{}
	}
	groups := Group(items)
	if groups == nil {
		groups = []ShopGroup{}
	}
	return Snapshot{
		Items:  items,
		Count:  count,
		Total:  Subtotal(items),
		ByShop: groups,
	}
}

// Snapshot fige l'état courant du moteur.
func (e *Engine) Snapshot() Snapshot {
	return NewSnapshot(e.Items())
}
