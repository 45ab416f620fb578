package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kissariya_back_end/internal/models"
)

// Engine est l'état en mémoire du panier d'une session. Chaque mutation est
// recopiée immédiatement dans le Store.
type Engine struct {
	mu       sync.Mutex
	items    []models.CartItem
	store    Store
	notifier Notifier
	log      *zap.Logger
}

// Open restaure le panier depuis le store.
func Open(ctx context.Context, store Store, notifier Notifier, log *zap.Logger) *Engine {
	if notifier == nil {
		notifier = Discard
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		items:    store.Load(ctx),
		store:    store,
		notifier: notifier,
		log:      log,
	}
}

// Add ajoute un produit (quantité 1) ou incrémente sa quantité s'il est déjà présent.
func (e *Engine) Add(ctx context.Context, p models.ProductDescriptor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kind := KindAdded
	if i := e.indexOf(p.ID); i >= 0 {
		e.items[i].Quantity++
		kind = KindQuantityUpdated
	} else {
		e.items = append(e.items, models.NewCartItem(p))
	}

	e.notifier.Notify(ctx, Notification{Kind: kind, ItemID: p.ID, ItemName: p.Name})
	return e.persist(ctx)
}

// Remove supprime la ligne id. Un id absent ne change rien, mais la
// notification "removed" est émise dans tous les cas.
func (e *Engine) Remove(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remove(ctx, id)
}

// UpdateQuantity fixe la quantité d'une ligne ; quantity <= 0 équivaut à Remove.
func (e *Engine) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		return e.remove(ctx, id)
	}

	i := e.indexOf(id)
	if i < 0 {
		return nil
	}
	e.items[i].Quantity = quantity
	return e.persist(ctx)
}

// Clear vide le panier.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = []models.CartItem{}
	return e.persist(ctx)
}

// Items retourne une copie des lignes, dans l'ordre du premier ajout.
func (e *Engine) Items() []models.CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.CartItem{}, e.items...)
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Get retourne la ligne id, si elle existe.
func (e *Engine) Get(id string) (models.CartItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(id); i >= 0 {
		return e.items[i], true
	}
	return models.CartItem{}, false
}

// TotalItems = somme des quantités.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, it := range e.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice = somme des prix unitaires × quantités.
func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Subtotal(e.items)
}

// ByShop regroupe les lignes par boutique, dans leur ordre d'apparition.
func (e *Engine) ByShop() map[string][]models.CartItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	groups := make(map[string][]models.CartItem)
	for _, it := range e.items {
		groups[it.ShopID] = append(groups[it.ShopID], it)
	}
	return groups
}

// Shops retourne les identifiants de boutique dans l'ordre de leur première apparition.
func (e *Engine) Shops() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]bool)
	var shops []string
	for _, it := range e.items {
		if !seen[it.ShopID] {
			seen[it.ShopID] = true
			shops = append(shops, it.ShopID)
		}
	}
	return shops
}

// Subtotal calcule le total d'une liste de lignes.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (e *Engine) remove(ctx context.Context, id string) error {
	var name string
	kept := e.items[:0]
	for _, it := range e.items {
		if it.ID == id {
			name = it.Name
			continue
		}
		kept = append(kept, it)
	}
	e.items = kept

	e.notifier.Notify(ctx, Notification{Kind: KindRemoved, ItemID: id, ItemName: name})
	return e.persist(ctx)
}

func (e *Engine) indexOf(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) persist(ctx context.Context) error {
	if err := e.store.Save(ctx, e.items); err != nil {
		e.log.Error("❌ Sauvegarde du panier impossible", zap.Int("items", len(e.items)), zap.Error(err))
		return err
	}
	return nil
}
