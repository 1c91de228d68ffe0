// Package api exposes the storefront over HTTP.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/perfura/storefront/internal/app"
	"github.com/perfura/storefront/internal/auth"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/config"
	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/store"
	"github.com/rs/zerolog"
)

// Store is the database access the handlers need.
type Store interface {
	ListProducts(ctx context.Context, page, pageSize int) (*store.OffsetPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
	ListReviewsPage(ctx context.Context, productID, cursor string, limit int) (*store.CursorPage, error)
	CreateReview(ctx context.Context, req store.CreateReviewRequest) (*models.Review, error)
}

type DBStore struct {
	DB *sql.DB
}

func (d DBStore) ListProducts(ctx context.Context, page, pageSize int) (*store.OffsetPage, error) {
	return store.ListProducts(ctx, d.DB, page, pageSize)
}

func (d DBStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return store.GetProduct(ctx, d.DB, id)
}

func (d DBStore) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return store.ListReviews(ctx, d.DB, productID)
}

func (d DBStore) ListReviewsPage(ctx context.Context, productID, cursor string, limit int) (*store.CursorPage, error) {
	return store.ListReviewsCursor(ctx, d.DB, productID, cursor, limit)
}

func (d DBStore) CreateReview(ctx context.Context, req store.CreateReviewRequest) (*models.Review, error) {
	return store.CreateReview(ctx, d.DB, req)
}

// Accounts is the auth provider plus profile edits.
type Accounts interface {
	auth.Provider
	UpdateProfile(ctx context.Context, sid, fullName string) (*auth.Session, error)
}

type Server struct {
	registry     *app.Registry
	catalog      *catalog.Catalog
	store        Store
	accounts     Accounts
	session      config.SessionConfig
	supportEmail string
	adminToken   string
	logger       zerolog.Logger
}

type Deps struct {
	Registry     *app.Registry
	Catalog      *catalog.Catalog
	Store        Store
	Accounts     Accounts
	Session      config.SessionConfig
	SupportEmail string
	AdminToken   string
	Logger       zerolog.Logger
}

func NewServer(d Deps) *Server {
	return &Server{
		registry:     d.Registry,
		catalog:      d.Catalog,
		store:        d.Store,
		accounts:     d.Accounts,
		session:      d.Session,
		supportEmail: d.SupportEmail,
		adminToken:   d.AdminToken,
		logger:       d.Logger.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "ok",
			"catalog_loading": s.catalog.Loading(),
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/catalog/refresh", s.handleCatalogRefresh)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.clientState)

		r.Get("/state", s.handleState)
		r.Post("/navigate", s.handleNavigate)
		r.Post("/back", s.handleBack)
		r.Post("/search", s.handleSearch)
		r.Post("/theme/toggle", s.handleToggleTheme)
		r.Post("/modal", s.handleOpenModal)
		r.Delete("/modal", s.handleCloseModal)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleProducts)
			r.Get("/search", s.handleSuggestions)
			r.Get("/{id}", s.handleProduct)
			r.Post("/{id}/select", s.handleSelectProduct)
			r.Get("/{id}/reviews", s.handleReviews)
			r.Post("/{id}/reviews", s.handleCreateReview)
		})

		r.Get("/catalog", s.handleCatalogPage)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handleCart)
			r.Post("/items", s.handleAddToCart)
			r.Patch("/items/{id}", s.handleUpdateQuantity)
			r.Delete("/items/{id}", s.handleRemoveFromCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/begin", s.handleBeginCheckout)
			r.Patch("/form", s.handleEditCheckoutField)
			r.Post("/", s.handleCheckout)
			r.Get("/confirmation", s.handleConfirmation)
			r.Delete("/confirmation", s.handleDismissConfirmation)
		})
		r.Get("/orders/{id}/receipt", s.handleReceipt)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignUp)
			r.Post("/signin", s.handleSignIn)
			r.Post("/signout", s.handleSignOut)
			r.Get("/session", s.handleSession)
			r.Patch("/user", s.handleUpdateProfile)
		})
	})

	return r
}
