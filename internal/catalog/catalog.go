// Package catalog holds the product collection shown by the storefront and
// the search filter over it.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/store"
	"github.com/rs/zerolog"
)

// SuggestionLimit caps the navbar search dropdown.
const SuggestionLimit = 5

type Source interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// DBSource reads the catalog from Postgres.
type DBSource struct {
	DB *sql.DB
}

func (s DBSource) ListProducts(ctx context.Context) ([]models.Product, error) {
	return store.ListAllProducts(ctx, s.DB)
}

type Catalog struct {
	source Source
	logger zerolog.Logger

	mu       sync.RWMutex
	products []models.Product
	loaded   bool
}

func New(source Source, logger zerolog.Logger) *Catalog {
	return &Catalog{
		source: source,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Load fetches the collection, newest first. A failed fetch leaves the
// catalog empty and is only logged.
func (c *Catalog) Load(ctx context.Context) {
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("error loading products")
		products = nil
	}

	c.mu.Lock()
	c.products = products
	c.loaded = true
	c.mu.Unlock()

	c.logger.Info().Int("count", len(products)).Msg("catalog loaded")
}

// Loading reports whether the first fetch is still outstanding.
func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loaded
}

// Products returns the fetched collection, or the seed fixture when the
// store returned nothing.
func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.products) == 0 {
		return SeedProducts()
	}
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Find(id string) (models.Product, bool) {
	for _, p := range c.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Filter returns the products whose name, brand, description, category or any
// note contains query, ignoring case. Order follows the input; a blank query
// returns the input as is. Surrounding spaces are part of a non-blank query.
func Filter(query string, products []models.Product) []models.Product {
	if strings.TrimSpace(query) == "" {
		return products
	}
	q := strings.ToLower(query)

	matched := []models.Product{}
	for _, p := range products {
		if matches(p, q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Suggest is Filter truncated to limit. It returns nothing for an empty query.
func Suggest(query string, products []models.Product, limit int) []models.Product {
	if strings.TrimSpace(query) == "" {
		return []models.Product{}
	}
	matched := Filter(query, products)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func matches(p models.Product, q string) bool {
	for _, field := range []string{p.Name, p.Brand, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, note := range p.Notes {
		if strings.Contains(strings.ToLower(note), q) {
			return true
		}
	}
	return false
}

// Refresh reloads the collection from the source. On failure the current
// collection is kept.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh catalog: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.loaded = true
	c.mu.Unlock()

	c.logger.Info().Int("count", len(products)).Msg("catalog refreshed")
	return len(products), nil
}
