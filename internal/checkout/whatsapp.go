// Package checkout prépare le passage de commande via WhatsApp : un message
// récapitulatif par boutique et le lien wa.me qui l'ouvre chez le marchand.
package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"kissariya_back_end/internal/cart"
	"kissariya_back_end/internal/models"
)

const (
	whatsAppBase = "https://wa.me/"
	currency     = "DH"
)

// Order est la commande d'une boutique prête à être envoyée sur WhatsApp.
type Order struct {
	ShopID   string          `json:"shop_id"`
	ShopName string          `json:"shop_name"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Message  string          `json:"message"`
	URL      string          `json:"url"`
}

// Build prépare la commande des lignes d'une seule boutique. Le panier n'est pas modifié.
func Build(items []models.CartItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, fmt.Errorf("aucun article pour cette boutique")
	}
	shop := items[0]

	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour! Je souhaite commander les produits suivants sur *%s* :\n\n", shop.ShopName)
	for _, it := range items {
		fmt.Fprintf(&b, "• *%s* (x%d) - %s %s\n", it.Name, it.Quantity, FormatPrice(it.LineTotal()), currency)
	}
	subtotal := cart.Subtotal(items)
	fmt.Fprintf(&b, "\n*Total: %s %s*\n\n", FormatPrice(subtotal), currency)
	b.WriteString("Pouvez-vous confirmer la disponibilité?")

	message := b.String()
	return Order{
		ShopID:   shop.ShopID,
		ShopName: shop.ShopName,
		Subtotal: subtotal,
		Message:  message,
		URL:      Link(shop.WhatsAppNumber, message),
	}, nil
}

// BuildAll prépare une commande par boutique, dans l'ordre d'apparition dans le panier.
func BuildAll(items []models.CartItem) []Order {
	groups := cart.Group(items)
	orders := make([]Order, 0, len(groups))
	for _, g := range groups {
		order, err := Build(g.Items)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

// ProductInquiry prépare la question "est-il toujours disponible ?" pour un produit.
func ProductInquiry(productName, whatsAppNumber string) (message, link string) {
	message = fmt.Sprintf("Bonjour! J'ai vu votre produit *%s* sur KissariyaMaroc. Est-il toujours disponible?", productName)
	return message, Link(whatsAppNumber, message)
}

// CatalogInquiry prépare la demande d'informations envoyée depuis le catalogue
// d'une boutique. L'ancien prix n'apparaît que pour un produit en promotion.
func CatalogInquiry(p models.Product, whatsAppNumber string) (message, link string) {
	promo := ""
	if p.IsPromotion && p.OriginalPrice != nil {
		promo = fmt.Sprintf("🏷️ (Au lieu de %s %s)", plainPrice(*p.OriginalPrice), currency)
	}
	message = fmt.Sprintf("Bonjour! Je suis intéressé(e) par ce produit:\n\n📦 *%s*\n💰 Prix: %s %s\n%s\n\nPouvez-vous me donner plus d'informations?",
		p.Name, plainPrice(p.Price), currency, promo)
	return message, Link(whatsAppNumber, message)
}

// plainPrice affiche un prix catalogue tel que saisi (1200, 99.5).
func plainPrice(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// Link construit https://wa.me/<chiffres>?text=<message encodé>.
func Link(phone, message string) string {
	return whatsAppBase + Digits(phone) + "?text=" + encodeComponent(message)
}

// Digits ne garde que les chiffres d'un numéro de téléphone.
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPrice affiche un montant sans décimales.
func FormatPrice(d decimal.Decimal) string {
	return d.Round(0).StringFixed(0)
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
