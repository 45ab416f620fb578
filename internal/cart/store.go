package cart

import (
	"context"
	"encoding/json"

	"kissariya_back_end/internal/models"
)

// DefaultKey est la clé de stockage local du panier.
const DefaultKey = "cart"

// Store sauvegarde et restaure la liste complète des lignes d'un panier.
// Load ne renvoie jamais d'erreur : un contenu absent ou illisible donne un panier vide.
type Store interface {
	Load(ctx context.Context) []models.CartItem
	Save(ctx context.Context, items []models.CartItem) error
}

// decodeItems lit un instantané persisté. Les éléments null ou sans id sont
// ignorés, les doublons fusionnés (quantités additionnées, première position conservée).
func decodeItems(data []byte) ([]models.CartItem, error) {
	var raw []*models.CartItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, ptr := range raw {
		if ptr == nil || ptr.ID == "" {
			continue
		}
		it := *ptr
		if pos, ok := index[it.ID]; ok {
			items[pos].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	return items, nil
}

func encodeItems(items []models.CartItem) ([]byte, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	return json.Marshal(items)
}
