package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Category struct {
	ID        gocql.UUID `json:"id"`
	ShopID    gocql.UUID `json:"shop_id"`
	Name      string     `json:"name"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Subcategory struct {
	ID         gocql.UUID `json:"id"`
	CategoryID gocql.UUID `json:"category_id"`
	Name       string     `json:"name"`
	SortOrder  int        `json:"sort_order"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NextSortOrder retourne max(sort_order)+1, ou 0 s'il n'y a encore rien.
func NextSortOrder(orders []int) int {
	if len(orders) == 0 {
		return 0
	}
	highest := orders[0]
	for _, o := range orders[1:] {
		if o > highest {
			highest = o
		}
	}
	return highest + 1
}
