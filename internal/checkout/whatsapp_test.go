package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"kissariya_back_end/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func tshirtLine(qty int) models.CartItem {
	return models.CartItem{
		ID: "p1", Name: "Tshirt", Price: 100, Quantity: qty,
		ShopID: "s1", ShopName: "Boutique A", WhatsAppNumber: "0612345678",
	}
}

func TestBuildScenario(t *testing.T) {
	order, err := Build([]models.CartItem{tshirtLine(2)})
	require.NoError(t, err)

	assert.Equal(t, "s1", order.ShopID)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)))
	assert.Contains(t, order.Message, "Tshirt")
	assert.Contains(t, order.Message, "*Total: 200 DH*")
	assert.Contains(t, order.Message, "• *Tshirt* (x2) - 200 DH")

	u, err := url.Parse(order.URL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/0612345678", u.Path)
	assert.Equal(t, order.Message, u.Query().Get("text"))
}

func TestBuildMessageLayout(t *testing.T) {
	order, err := Build([]models.CartItem{
		tshirtLine(1),
		{ID: "p3", Name: "Caftan", Price: 1200.5, Quantity: 2, ShopID: "s1", ShopName: "Boutique A", WhatsAppNumber: "0612345678"},
	})
	require.NoError(t, err)

	want := "Bonjour! Je souhaite commander les produits suivants sur *Boutique A* :\n\n" +
		"• *Tshirt* (x1) - 100 DH\n" +
		"• *Caftan* (x2) - 2401 DH\n" +
		"\n*Total: 2501 DH*\n\n" +
		"Pouvez-vous confirmer la disponibilité?"
	assert.Equal(t, want, order.Message)
}

func TestLinkEncoding(t *testing.T) {
	link := Link("+212 (6) 12-34-56-78", "Bonjour & merci? 100%")

	assert.True(t, strings.HasPrefix(link, "https://wa.me/212612345678?text="))
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "Bonjour%20%26%20merci%3F%20100%25")
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "0612345678", Digits("0612345678"))
	assert.Equal(t, "212612345678", Digits("+212 6-12 34 56 78"))
	assert.Equal(t, "", Digits("pas de numéro"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "200", FormatPrice(decimal.NewFromInt(200)))
	assert.Equal(t, "100", FormatPrice(decimal.RequireFromString("99.5")))
	assert.Equal(t, "0", FormatPrice(decimal.Zero))
}

func TestBuildAllSplitsByShop(t *testing.T) {
	items := []models.CartItem{
		tshirtLine(2),
		{ID: "p2", Name: "Babouche", Price: 50, Quantity: 1, ShopID: "s2", ShopName: "Boutique B", WhatsAppNumber: "0698877665"},
	}
	before := append([]models.CartItem{}, items...)

	orders := BuildAll(items)
	require.Len(t, orders, 2)
	assert.Equal(t, "s1", orders[0].ShopID)
	assert.True(t, orders[0].Subtotal.Equal(decimal.NewFromInt(200)))
	assert.NotContains(t, orders[0].Message, "Babouche")
	assert.Equal(t, "s2", orders[1].ShopID)
	assert.Contains(t, orders[1].URL, "wa.me/0698877665")

	assert.Equal(t, before, items)
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
	assert.Empty(t, BuildAll(nil))
}

func TestProductInquiry(t *testing.T) {
	msg, link := ProductInquiry("Tshirt", "06 12 34 56 78")
	assert.Equal(t, "Bonjour! J'ai vu votre produit *Tshirt* sur KissariyaMaroc. Est-il toujours disponible?", msg)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/0612345678?text="))
}

func TestCatalogInquiry(t *testing.T) {
	original := 1500.0
	caftan := models.Product{Name: "Caftan", Price: 1200.5, OriginalPrice: &original, IsPromotion: true}

	msg, link := CatalogInquiry(caftan, "+212 6 11 22 33 44")
	want := "Bonjour! Je suis intéressé(e) par ce produit:\n\n" +
		"📦 *Caftan*\n" +
		"💰 Prix: 1200.5 DH\n" +
		"🏷️ (Au lieu de 1500 DH)\n\n" +
		"Pouvez-vous me donner plus d'informations?"
	assert.Equal(t, want, msg)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/212611223344", u.Path)
	assert.Equal(t, msg, u.Query().Get("text"))

	// Sans promotion, pas d'ancien prix même s'il est renseigné.
	caftan.IsPromotion = false
	msg, _ = CatalogInquiry(caftan, "0611223344")
	assert.NotContains(t, msg, "Au lieu de")
	assert.Contains(t, msg, "💰 Prix: 1200.5 DH\n\n\nPouvez-vous")
}
