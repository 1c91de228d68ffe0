package catalog

import (
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var seedCreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SeedProducts is the sample collection displayed while the store is empty.
// Creation times descend from the first product, so newest-first listings keep
// the collection order.
func SeedProducts() []models.Product {
	products := []models.Product{
		seed("1", "Vampire Blood", "Euro Vally", 799, "An intoxicating blend of Bulgarian rose and velvet musk",
			"/images/34.jpg", "Floral", "30ml", 4.8, "Rose", "Musk", "Vanilla"),
		seed("2", "Cool Water", "Perfura Special", 750, "Deep, mysterious oud with hints of amber and sandalwood",
			"/images/11.jpeg", "Oriental", "30ml", 4.9, "Oud", "Amber", "Sandalwood"),
		seed("3", "Dior Sauvage", "Perfura Special", 810, "Refreshing blend of bergamot, lemon, and white tea",
			"/images/34.jpg", "Citrus", "30ml", 4.6, "Bergamot", "Lemon", "White Tea"),
		seed("4", "Wild Stone", "Botanica", 750, "Exotic jasmine with woody undertones and soft vanilla",
			"/images/11.jpeg", "Floral", "30ml", 4.7, "Jasmine", "Sandalwood", "Vanilla"),
		seed("5", "One Man Show", "Perfura Special", 799, "Fresh marine scent with sea salt and driftwood",
			"/images/34.jpg", "Aquatic", "30ml", 4.5, "Sea Salt", "Driftwood", "Ambergris"),
		seed("6", "Golden Amber", "Imperial", 200, "Luxurious amber with gold leaf and precious woods",
			"/images/11.jpeg", "Oriental", "50ml", 4.9, "Amber", "Gold Leaf", "Cedar"),
	}
	for i := range products {
		products[i].CreatedAt = seedCreatedAt.Add(-time.Duration(i) * time.Minute)
	}
	return products
}

func seed(id, name, brand string, price int64, description, image, category, volume string, rating float64, notes ...string) models.Product {
	return models.Product{
		ID:          id,
		Name:        name,
		Brand:       brand,
		Price:       decimal.NewFromInt(price),
		Description: description,
		ImageURL:    image,
		Category:    category,
		Volume:      volume,
		Notes:       notes,
		Rating:      rating,
	}
}
