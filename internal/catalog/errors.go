package catalog

import "errors"

var (
	ErrNotFound     = errors.New("introuvable")
	ErrSlugTaken    = errors.New("ce lien est déjà utilisé")
	ErrShopExists   = errors.New("vous avez déjà une boutique")
	ErrEmptySlug    = errors.New("le lien de la boutique est obligatoire")
	ErrInvalidInput = errors.New("données invalides")
)
