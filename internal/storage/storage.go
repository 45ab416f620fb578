package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MaxImageSize est la taille maximale d'une image envoyée.
const MaxImageSize = 5 << 20

// Types d'images acceptés.
const (
	KindLogo    = "logo"
	KindCover   = "cover"
	KindProduct = "product"
)

var (
	ErrDisabled       = errors.New("stockage d'images désactivé")
	ErrInvalidKind    = errors.New("type d'image invalide")
	ErrUnsupportedExt = errors.New("format d'image non supporté")
	ErrTooLarge       = errors.New("image trop volumineuse")
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// Upload est le résultat d'un envoi.
type Upload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Images range les logos, couvertures et photos produits dans un bucket MinIO.
type Images struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *zap.Logger
}

// NewImages accepte un client nil : les envois retournent alors ErrDisabled.
// publicURL est la base des URLs publiques ; vide, elle est déduite du client.
func NewImages(client *minio.Client, bucket, publicURL string, log *zap.Logger) *Images {
	if publicURL == "" && client != nil {
		publicURL = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &Images{client: client, bucket: bucket, publicURL: publicURL, log: log}
}

// Put envoie une image de la boutique et retourne son URL publique.
func (i *Images) Put(ctx context.Context, shopID, kind, filename string, r io.Reader, size int64) (Upload, error) {
	if i == nil || i.client == nil {
		return Upload{}, ErrDisabled
	}
	if size > MaxImageSize {
		return Upload{}, ErrTooLarge
	}
	key, contentType, err := ObjectKey(shopID, kind, filename)
	if err != nil {
		return Upload{}, err
	}

	_, err = i.client.PutObject(ctx, i.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Upload{}, fmt.Errorf("envoi %s: %w", key, err)
	}
	i.log.Info("🖼️ Image envoyée", zap.String("key", key), zap.Int64("size", size))
	return Upload{Key: key, URL: i.PublicURL(key)}, nil
}

// PublicURL retourne l'URL publique d'un objet du bucket.
func (i *Images) PublicURL(key string) string {
	return i.publicURL + "/" + i.bucket + "/" + key
}

// KeyFromURL retrouve la clé d'objet à partir d'une URL publique.
func (i *Images) KeyFromURL(raw string) string {
	prefix := i.publicURL + "/" + i.bucket + "/"
	if strings.HasPrefix(raw, prefix) {
		return strings.TrimPrefix(raw, prefix)
	}
	return raw
}

// SignedURL génère une URL de lecture temporaire.
func (i *Images) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	if i == nil || i.client == nil {
		return "", ErrDisabled
	}
	u, err := i.client.PresignedGetObject(ctx, i.bucket, i.KeyFromURL(objectPath), ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Remove supprime une image. Les URLs externes au bucket sont ignorées.
func (i *Images) Remove(ctx context.Context, shopID, objectPath string) error {
	if i == nil || i.client == nil {
		return nil
	}
	key := i.KeyFromURL(objectPath)
	if !strings.HasPrefix(key, shopID+"/") {
		return nil
	}
	return i.client.RemoveObject(ctx, i.bucket, key, minio.RemoveObjectOptions{})
}

// ObjectKey construit la clé <shop>/<kind>/<uuid><ext> et le Content-Type associé.
func ObjectKey(shopID, kind, filename string) (string, string, error) {
	switch kind {
	case KindLogo, KindCover, KindProduct:
	default:
		return "", "", ErrInvalidKind
	}
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		return "", "", ErrUnsupportedExt
	}
	return shopID + "/" + kind + "/" + uuid.NewString() + ext, contentType, nil
}
