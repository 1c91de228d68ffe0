package store_test

import (
	"context"
	"testing"

	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/store"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := store.CreateUser(ctx, db, "Buyer@Example.com ", "Buyer", "hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if user.Email != "buyer@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}

	if _, err := store.CreateUser(ctx, db, "buyer@example.com", "Other", "hash"); err != database.ErrEmailTaken {
		t.Errorf("Expected email taken, got: %v", err)
	}
}

func TestGetUserCredentials(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := store.CreateUser(ctx, db, "login@example.com", "Login", "secret-hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	user, hash, err := store.GetUserCredentials(ctx, db, "LOGIN@example.com")
	if err != nil {
		t.Fatalf("Get credentials: %v", err)
	}
	if user.ID != created.ID || hash != "secret-hash" {
		t.Errorf("Unexpected credentials: %+v %s", user, hash)
	}

	if _, _, err := store.GetUserCredentials(ctx, db, "nobody@example.com"); err != database.ErrUserNotFound {
		t.Errorf("Expected user not found, got: %v", err)
	}

	if user.FullName != "Login" {
		t.Errorf("Expected full name Login, got %s", user.FullName)
	}
}

func TestUpdateUserFullName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created, err := store.CreateUser(ctx, db, "rename@example.com", "Old", "hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	updated, err := store.UpdateUserFullName(ctx, db, created.ID, "  New Name ")
	if err != nil {
		t.Fatalf("Update user: %v", err)
	}
	if updated.FullName != "New Name" {
		t.Errorf("Expected trimmed name, got %q", updated.FullName)
	}

	if _, err := store.UpdateUserFullName(ctx, db, "not-a-uuid", "x"); err != database.ErrUserNotFound {
		t.Errorf("Expected user not found, got: %v", err)
	}
}
