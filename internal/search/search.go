package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"kissariya_back_end/internal/models"
)

// ErrDisabled est retourné quand aucun client Elasticsearch n'est configuré.
var ErrDisabled = errors.New("recherche désactivée")

// DefaultLimit borne le nombre de résultats d'une recherche.
const DefaultLimit = 40

// Document est la forme indexée d'un produit actif.
type Document struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shop_id"`
	ShopName    string    `json:"shop_name"`
	ShopSlug    string    `json:"shop_slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDocument prépare un produit pour l'index.
func NewDocument(p models.Product, shop models.Shop, category string) Document {
	doc := Document{
		ID:          p.ID.String(),
		ShopID:      shop.ID.String(),
		ShopName:    shop.Name,
		ShopSlug:    shop.Slug,
		Name:        p.Name,
		Description: p.Description,
		Category:    category,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
	}
	if cover := p.CoverImage(); cover != nil {
		doc.ImageURL = *cover
	}
	return doc
}

// Index maintient l'index des produits dans Elasticsearch.
type Index struct {
	client *elasticsearch.Client
	name   string
	log    *zap.Logger
}

// NewIndex accepte un client nil : l'indexation devient alors un no-op.
func NewIndex(client *elasticsearch.Client, name string, log *zap.Logger) *Index {
	return &Index{client: client, name: name, log: log}
}

func (i *Index) Enabled() bool { return i != nil && i.client != nil }

// Put indexe (ou réindexe) un produit.
func (i *Index) Put(ctx context.Context, doc Document) error {
	if !i.Enabled() {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encodage document %s: %w", doc.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexation %s: %s", doc.ID, res.String())
	}
	i.log.Debug("✅ Produit indexé", zap.String("product_id", doc.ID), zap.String("name", doc.Name))
	return nil
}

// Delete retire un produit de l'index. Un document absent n'est pas une erreur.
func (i *Index) Delete(ctx context.Context, id string) error {
	if !i.Enabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: i.name, DocumentID: id, Refresh: "true"}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("suppression %s: %s", id, res.String())
	}
	return nil
}

// Search cherche dans le nom, la description, la boutique et la catégorie.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	if !i.Enabled() {
		return nil, ErrDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []Document{}, nil
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	body, err := buildQuery(query, limit)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			// Index pas encore créé : aucun produit publié.
			return []Document{}, nil
		}
		i.log.Error("❌ Elasticsearch erreur", zap.String("status", res.Status()))
		return nil, fmt.Errorf("recherche: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("décodage JSON: %w", err)
	}

	docs := make([]Document, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildQuery(query string, limit int) ([]byte, error) {
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "shop_name^2", "category", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encodage requête: %w", err)
	}
	return data, nil
}
