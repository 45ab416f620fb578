package cart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"kissariya_back_end/internal/models"
)

// FileStore persiste le panier dans un fichier JSON local (<dir>/<key>.json).
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(dir, key string, log *zap.Logger) (*FileStore, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("création du dossier panier %s: %w", dir, err)
	}
	return &FileStore{path: filepath.Join(dir, key+".json"), log: log}, nil
}

func (s *FileStore) Load(ctx context.Context) []models.CartItem {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("⚠️ Lecture du panier impossible, panier vide", zap.String("path", s.path), zap.Error(err))
		}
		return []models.CartItem{}
	}

	items, err := decodeItems(data)
	if err != nil {
		s.log.Warn("⚠️ Panier corrompu ignoré", zap.String("path", s.path), zap.Error(err))
		return []models.CartItem{}
	}
	return items
}

// Save remplace le fichier en entier (écriture temporaire puis rename).
func (s *FileStore) Save(ctx context.Context, items []models.CartItem) error {
	data, err := encodeItems(items)
	if err != nil {
		return fmt.Errorf("encodage panier: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cart-*")
	if err != nil {
		return fmt.Errorf("fichier temporaire panier: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("écriture panier: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("écriture panier: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("remplacement panier: %w", err)
	}
	return nil
}
