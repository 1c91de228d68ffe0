package store_test

import (
	"context"
	"testing"

	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/store"
	"github.com/shopspring/decimal"
)

func newProduct(name string, price int64, notes ...string) models.Product {
	return models.Product{
		Name:        name,
		Brand:       "Perfura Special",
		Price:       decimal.NewFromInt(price),
		Description: name + " eau de parfum",
		Category:    "Floral",
		Volume:      "30ml",
		Notes:       notes,
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := store.CreateProduct(ctx, db, newProduct("Vampire Blood", 799, "Rose", "Musk", "Vanilla"))
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	if created.ID == "" {
		t.Fatal("Product ID should be set")
	}

	got, err := store.GetProduct(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}

	if !got.Price.Equal(decimal.NewFromInt(799)) {
		t.Errorf("Expected price 799, got %s", got.Price)
	}
	if len(got.Notes) != 3 || got.Notes[0] != "Rose" {
		t.Errorf("Expected notes [Rose Musk Vanilla], got %v", got.Notes)
	}
	if got.Rating != 0 {
		t.Errorf("Expected zero rating for a new product, got %v", got.Rating)
	}
}

func TestGetProductNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := store.GetProduct(ctx, db, "00000000-0000-0000-0000-000000000000"); err != database.ErrProductNotFound {
		t.Errorf("Expected product not found, got: %v", err)
	}
	if _, err := store.GetProduct(ctx, db, "1"); err != database.ErrProductNotFound {
		t.Errorf("Expected product not found for malformed id, got: %v", err)
	}
}

func TestListAllProductsNewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	names := []string{"Cool Water", "Dior Sauvage", "Wild Stone"}
	for _, name := range names {
		if _, err := store.CreateProduct(ctx, db, newProduct(name, 750)); err != nil {
			t.Fatalf("Create product %s: %v", name, err)
		}
	}

	products, err := store.ListAllProducts(ctx, db)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}

	if len(products) != len(names) {
		t.Fatalf("Expected %d products, got %d", len(names), len(products))
	}
	for i, name := range []string{"Wild Stone", "Dior Sauvage", "Cool Water"} {
		if products[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, products[i].Name)
		}
	}
}

func TestListProductsOffset(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.CreateProduct(ctx, db, newProduct("Golden Amber", 200)); err != nil {
			t.Fatalf("Create product %d: %v", i, err)
		}
	}

	page, err := store.ListProducts(ctx, db, 2, 2)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}

	if page.Total != 5 {
		t.Errorf("Expected total 5, got %d", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", page.TotalPages)
	}
	if items := page.Items.([]models.Product); len(items) != 2 {
		t.Errorf("Expected 2 items on page 2, got %d", len(items))
	}
}

func TestCreateProductsAllOrNothing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := store.CreateProducts(ctx, db, []models.Product{
		newProduct("Midnight Oud", 1199, "Oud"),
		newProduct("Citrus Bloom", 599, "Bergamot"),
	})
	if err != nil {
		t.Fatalf("Create products: %v", err)
	}
	if len(created) != 2 || created[0].ID == "" || created[1].ID == "" {
		t.Fatalf("Expected 2 created products with IDs, got %+v", created)
	}

	// The price check constraint rejects the second row.
	if _, err := store.CreateProducts(ctx, db, []models.Product{newProduct("Ghost", 100), newProduct("Broken", -1)}); err == nil {
		t.Fatal("Expected error for batch with a negative price")
	}

	page, err := store.ListProducts(ctx, db, 1, 10)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Expected failed batch to be rolled back leaving 2 products, got %d", page.Total)
	}
}

func TestCreateProductsKeepsSeedRatingAndOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	seeded := catalog.SeedProducts()
	if _, err := store.CreateProducts(ctx, db, seeded); err != nil {
		t.Fatalf("Create products: %v", err)
	}

	all, err := store.ListAllProducts(ctx, db)
	if err != nil {
		t.Fatalf("List all products: %v", err)
	}
	if len(all) != len(seeded) {
		t.Fatalf("Expected %d products, got %d", len(seeded), len(all))
	}

	for i, p := range all {
		if p.Name != seeded[i].Name {
			t.Errorf("Position %d: expected %s, got %s", i, seeded[i].Name, p.Name)
		}
		if p.Rating != seeded[i].Rating {
			t.Errorf("%s: expected rating %v, got %v", p.Name, seeded[i].Rating, p.Rating)
		}
		if !p.CreatedAt.Equal(seeded[i].CreatedAt) {
			t.Errorf("%s: expected created_at %v, got %v", p.Name, seeded[i].CreatedAt, p.CreatedAt)
		}
	}
}
