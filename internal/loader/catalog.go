// Package loader reads catalog fragments from files, SQLite databases or the
// built-in sample.
package loader

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"mosdacbot/internal/codec"
	"mosdacbot/internal/domain"
	"mosdacbot/internal/repository"
	"mosdacbot/internal/repository/sqlite"
)

//go:embed sample_catalog.yaml
var sampleCatalogYAML []byte

// Format values accepted by Load
const (
	FormatAuto   = "auto"
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Sample returns the built-in catalog
func Sample() (*domain.CatalogFragment, error) {
	return codec.NewYAMLCodec().Parse(bytes.NewReader(sampleCatalogYAML))
}

// Load reads a catalog fragment from path. An empty path yields the built-in
// sample. With FormatAuto (or "") the format comes from the file extension.
func Load(ctx context.Context, path, format string) (*domain.CatalogFragment, error) {
	if path == "" {
		return Sample()
	}

	format, err := resolveFormat(path, format)
	if err != nil {
		return nil, err
	}

	if format == FormatSQLite {
		return loadSource(ctx, path)
	}

	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	fragment, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return fragment, nil
}

// Seed writes fragment into the SQLite database at dbPath, replacing its contents
func Seed(ctx context.Context, dbPath string, fragment *domain.CatalogFragment) error {
	repo, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	return seed(ctx, repo, fragment)
}

func seed(ctx context.Context, store repository.CatalogStore, fragment *domain.CatalogFragment) error {
	if err := store.SaveFragment(ctx, fragment); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}

func loadSource(ctx context.Context, path string) (*domain.CatalogFragment, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	repo, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	return readSource(ctx, repo, path)
}

func readSource(ctx context.Context, src repository.CatalogSource, name string) (*domain.CatalogFragment, error) {
	fragment, err := src.LoadFragment(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", name, err)
	}
	return fragment, nil
}

func resolveFormat(path, format string) (string, error) {
	if format != "" && format != FormatAuto {
		return format, nil
	}
	if inferred := codec.FormatFromPath(path); inferred != "" {
		return inferred, nil
	}
	return "", fmt.Errorf("cannot infer catalog format from %q; set catalog.format", path)
}
