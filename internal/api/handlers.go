package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/perfura/storefront/internal/app"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/checkout"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/store"
	"github.com/perfura/storefront/internal/view"
)

const (
	defaultReviewPage = 10
	maxReviewPage     = 50
)

// reviews loads the reviews of a product. Failures are logged and shown as an
// empty list.
func (s *Server) reviews(ctx context.Context, productID string) []models.Review {
	reviews, err := s.store.ListReviews(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("error fetching reviews")
		return []models.Review{}
	}
	return reviews
}

func (s *Server) respondPage(w http.ResponseWriter, r *http.Request, state *app.State) {
	snap := state.Snapshot()

	var reviews []models.Review
	if snap.Selected != nil {
		reviews = s.reviews(r.Context(), snap.Selected.ID)
	}

	page, err := view.NewPage(snap, s.catalog.Products(), s.catalog.Loading(), reviews)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respondPage(w, r, stateFrom(r))
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section app.Section `json:"section"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	if err := state.Navigate(req.Section); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	s.respondPage(w, r, state)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)
	state.Back()
	s.respondPage(w, r, state)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	state.SetSearch(req.Query)
	s.respondPage(w, r, state)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	dark := stateFrom(r).ToggleDarkMode()
	setThemeCookie(w, dark, s.session.SecureOnly)
	respondJSON(w, http.StatusOK, map[string]bool{"dark_mode": dark})
}

func (s *Server) handleOpenModal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Modal app.Modal `json:"modal"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	if err := state.OpenModal(req.Modal); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	s.respondPage(w, r, state)
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)
	state.CloseModal()
	s.respondPage(w, r, state)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := catalog.Filter(r.URL.Query().Get("q"), s.catalog.Products())

	cards := make([]view.ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, view.Card(p))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"loading":  s.catalog.Loading(),
		"products": cards,
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	snap := stateFrom(r).Snapshot()
	snap.Query = r.URL.Query().Get("q")
	respondJSON(w, http.StatusOK, view.NewNavbar(snap, s.catalog.Products()).Suggestions)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, ok := s.catalog.Find(id)
	if !ok {
		// Products added after the catalog was loaded are read from the store.
		stored, err := s.store.GetProduct(r.Context(), id)
		if err != nil {
			respondErr(w, s.logger, err)
			return
		}
		product = *stored
	}

	quantity, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
	user := stateFrom(r).User()
	respondJSON(w, http.StatusOK, view.NewProductDetail(product, s.reviews(r.Context(), id), quantity, user))
}

func (s *Server) handleSelectProduct(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)
	if _, err := state.SelectProduct(chi.URLParam(r, "id")); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	s.respondPage(w, r, state)
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > maxReviewPage {
		limit = defaultReviewPage
	}

	page, err := s.store.ListReviewsPage(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("cursor"), limit)
	if errors.Is(err, database.ErrInvalidCursor) {
		respondErr(w, s.logger, err)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching reviews")
		page = &store.CursorPage{Items: []models.Review{}}
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	user := state.User()
	if user == nil {
		state.OpenModal(app.ModalAuth)
		respondErr(w, s.logger, app.ErrAuthRequired)
		return
	}

	review, err := s.store.CreateReview(r.Context(), store.CreateReviewRequest{
		ProductID: chi.URLParam(r, "id"),
		UserID:    user.ID,
		UserName:  app.DisplayName(user),
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	})
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

func (s *Server) handleCatalogPage(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := s.store.ListProducts(r.Context(), page, pageSize)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	count, err := s.catalog.Refresh(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("catalog refresh failed, keeping current collection")
		respondError(w, http.StatusServiceUnavailable, "Catalog refresh failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"products": count})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, view.NewCart(stateFrom(r).Snapshot()))
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	if err := state.AddToCart(req.ProductID, req.Quantity); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view.NewCart(state.Snapshot()))
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	state.UpdateQuantity(chi.URLParam(r, "id"), req.Quantity)
	respondJSON(w, http.StatusOK, view.NewCart(state.Snapshot()))
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)
	state.RemoveFromCart(chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, view.NewCart(state.Snapshot()))
}

func (s *Server) handleBeginCheckout(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)
	if err := state.BeginCheckout(); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view.NewCheckout(state.Snapshot()))
}

func (s *Server) handleEditCheckoutField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state := stateFrom(r)
	if err := state.EditCheckoutField(req.Field, req.Value); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view.NewCheckout(state.Snapshot()))
}

// handleCheckout places the order. A request body, when present, replaces the
// stored form first.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)

	if r.ContentLength != 0 {
		var form checkout.Form
		if err := decode(w, r, &form); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		state.SetCheckoutForm(form)
	}

	confirmation, err := state.Checkout(r.Context())
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}

	out, err := view.NewConfirmation(confirmation)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	confirmation := stateFrom(r).Confirmation()
	if confirmation == nil {
		respondError(w, http.StatusNotFound, "no order to confirm")
		return
	}

	out, err := view.NewConfirmation(confirmation)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDismissConfirmation(w http.ResponseWriter, r *http.Request) {
	state := stateFrom(r)
	state.DismissConfirmation()
	s.respondPage(w, r, state)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	confirmation := stateFrom(r).Confirmation()
	if confirmation == nil || confirmation.Order.OrderID != chi.URLParam(r, "id") {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	receipt, err := checkout.Receipt(confirmation.Order, s.supportEmail)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+checkout.ReceiptFilename(confirmation.Order)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(receipt))
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.accounts.SignUp(r.Context(), stateFrom(r).ID(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.accounts.SignIn(r.Context(), stateFrom(r).ID(), req.Email, req.Password)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.SignOut(r.Context(), stateFrom(r).ID()); err != nil {
		respondErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.accounts.Session(r.Context(), stateFrom(r).ID())
	if err != nil {
		s.logger.Error().Err(err).Msg("error getting session")
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"full_name"`
	}
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.accounts.UpdateProfile(r.Context(), stateFrom(r).ID(), req.FullName)
	if err != nil {
		respondErr(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}
