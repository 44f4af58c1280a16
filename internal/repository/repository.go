package repository

import (
	"context"

	"mosdacbot/internal/domain"
)

// CatalogSource yields a catalog fragment for ingestion
type CatalogSource interface {
	LoadFragment(ctx context.Context) (*domain.CatalogFragment, error)
	Close() error
}

// CatalogStore is a CatalogSource that can also persist a fragment
type CatalogStore interface {
	CatalogSource
	SaveFragment(ctx context.Context, fragment *domain.CatalogFragment) error
	Counts(ctx context.Context) (nodes, edges int, err error)
}
