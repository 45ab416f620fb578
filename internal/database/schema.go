package database

import (
	"fmt"

	"github.com/gocql/gocql"
	"go.uber.org/zap"
)

// Tables du catalogue. Les tables *_by_* sont des index maintenus par le repository.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS shops (
		shop_id uuid PRIMARY KEY,
		user_id text,
		name text,
		description text,
		logo_url text,
		cover_url text,
		whatsapp_number text,
		slug text,
		location_city text,
		location_url text,
		show_location boolean,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS shops_by_slug (slug text PRIMARY KEY, shop_id uuid)`,
	`CREATE TABLE IF NOT EXISTS shops_by_user (user_id text PRIMARY KEY, shop_id uuid)`,
	`CREATE TABLE IF NOT EXISTS categories (
		shop_id uuid,
		category_id uuid,
		name text,
		sort_order int,
		created_at timestamp,
		updated_at timestamp,
		PRIMARY KEY (shop_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS subcategories (
		category_id uuid,
		subcategory_id uuid,
		name text,
		sort_order int,
		created_at timestamp,
		updated_at timestamp,
		PRIMARY KEY (category_id, subcategory_id)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id uuid PRIMARY KEY,
		shop_id uuid,
		category_id uuid,
		subcategory_id uuid,
		name text,
		description text,
		price double,
		original_price double,
		is_promotion boolean,
		image_url text,
		is_active boolean,
		location_city text,
		location_url text,
		show_location boolean,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS products_by_shop (shop_id uuid, product_id uuid, PRIMARY KEY (shop_id, product_id))`,
	`CREATE TABLE IF NOT EXISTS shop_views_daily (
		shop_id uuid,
		day date,
		views counter,
		PRIMARY KEY (shop_id, day)
	) WITH CLUSTERING ORDER BY (day DESC)`,
	`CREATE TABLE IF NOT EXISTS product_views (
		shop_id uuid,
		product_id uuid,
		views counter,
		PRIMARY KEY (shop_id, product_id)
	)`,
}

// EnsureSchema crée les tables manquantes dans le keyspace de la session.
func EnsureSchema(session *gocql.Session, log *zap.Logger) error {
	for _, stmt := range schema {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("création schéma: %w", err)
		}
	}
	log.Info("✅ Schéma ScyllaDB vérifié", zap.Int("tables", len(schema)))
	return nil
}
