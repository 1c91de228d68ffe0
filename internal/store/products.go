package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
)

const productColumns = `id, name, brand, price, description, image_url, category, volume, notes, rating, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, product *models.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.Price,
		&product.Description,
		&product.ImageURL,
		&product.Category,
		&product.Volume,
		pq.Array(&product.Notes),
		&product.Rating,
		&product.CreatedAt,
	)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func CreateProduct(ctx context.Context, db *sql.DB, p models.Product) (*models.Product, error) {
	return insertProduct(ctx, db, p)
}

// CreateProducts inserts all products or none of them.
func CreateProducts(ctx context.Context, db *sql.DB, products []models.Product) ([]models.Product, error) {
	created := make([]models.Product, 0, len(products))

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for _, p := range products {
			product, err := insertProduct(ctx, tx, p)
			if err != nil {
				return err
			}
			created = append(created, *product)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func insertProduct(ctx context.Context, q queryRower, p models.Product) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (name, brand, price, description, image_url, category, volume, notes, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, NOW()))
		RETURNING ` + productColumns

	notes := p.Notes
	if notes == nil {
		notes = []string{}
	}

	// A zero CreatedAt means now.
	var createdAt any
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt
	}

	row := q.QueryRowContext(ctx, query,
		p.Name, p.Brand, p.Price, p.Description, p.ImageURL, p.Category, p.Volume, pq.Array(notes),
		p.Rating, createdAt)
	if err := scanProduct(row, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrProductNotFound
	}

	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	if err := scanProduct(db.QueryRowContext(ctx, query, id), product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ListAllProducts returns the whole catalog, newest first.
func ListAllProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
