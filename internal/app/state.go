// Package app holds the per-client storefront state. Every change goes through
// a named operation on State; readers work on a Snapshot.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/perfura/storefront/internal/cart"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/checkout"
	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type Section string

const (
	SectionHome          Section = "home"
	SectionCollections   Section = "collections"
	SectionOffers        Section = "offers"
	SectionAbout         Section = "about"
	SectionProductDetail Section = "product-detail"
)

type Modal string

const (
	ModalNone         Modal = "none"
	ModalAuth         Modal = "auth"
	ModalCart         Modal = "cart"
	ModalCheckout     Modal = "checkout"
	ModalConfirmation Modal = "confirmation"
)

var (
	ErrAuthRequired       = errors.New("sign in required")
	ErrUnknownSection     = errors.New("unknown section")
	ErrUnknownModal       = errors.New("unknown modal")
	ErrUnknownProduct     = errors.New("unknown product")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// Submitter places an order built from the checkout form and cart lines.
type Submitter interface {
	Submit(ctx context.Context, form checkout.Form, items []models.CartItem) (*checkout.Confirmation, error)
}

type State struct {
	id        string
	catalog   *catalog.Catalog
	submitter Submitter

	mu           sync.Mutex
	section      Section
	selected     *models.Product
	query        string
	darkMode     bool
	modal        Modal
	cart         *cart.Cart
	user         *models.User
	form         checkout.Form
	fieldErrors  checkout.FieldErrors
	confirmation *checkout.Confirmation
	submitting   bool
}

func NewState(id string, cat *catalog.Catalog, submitter Submitter, darkMode bool) *State {
	return &State{
		id:          id,
		catalog:     cat,
		submitter:   submitter,
		section:     SectionHome,
		darkMode:    darkMode,
		modal:       ModalNone,
		cart:        cart.New(),
		fieldErrors: checkout.FieldErrors{},
	}
}

func (s *State) ID() string { return s.id }

// Snapshot is a read-only copy of the state at one instant.
type Snapshot struct {
	Section      Section
	Selected     *models.Product
	Query        string
	DarkMode     bool
	Modal        Modal
	Items        []models.CartItem
	TotalItems   int
	TotalPrice   decimal.Decimal
	User         *models.User
	Form         checkout.Form
	FieldErrors  checkout.FieldErrors
	Confirmation *checkout.Confirmation
	Submitting   bool
}

// View is the section on screen: a selected product overrides the section.
func (s Snapshot) View() Section {
	if s.Selected != nil {
		return SectionProductDetail
	}
	return s.Section
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Section:      s.section,
		Query:        s.query,
		DarkMode:     s.darkMode,
		Modal:        s.modal,
		Items:        s.cart.Items(),
		TotalItems:   s.cart.TotalItems(),
		TotalPrice:   s.cart.TotalPrice(),
		Form:         s.form,
		FieldErrors:  make(checkout.FieldErrors, len(s.fieldErrors)),
		Confirmation: s.confirmation,
		Submitting:   s.submitting,
	}
	if s.selected != nil {
		p := *s.selected
		snap.Selected = &p
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	for k, v := range s.fieldErrors {
		snap.FieldErrors[k] = v
	}
	return snap
}

// Navigate shows a top-level section and clears the search and selection.
func (s *State) Navigate(section Section) error {
	switch section {
	case SectionHome, SectionCollections, SectionOffers, SectionAbout:
	default:
		return ErrUnknownSection
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.section = section
	s.selected = nil
	s.query = ""
	return nil
}

// SelectProduct shows the detail of a product over the current section.
func (s *State) SelectProduct(id string) (models.Product, error) {
	product, ok := s.catalog.Find(id)
	if !ok {
		return models.Product{}, ErrUnknownProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &product
	s.query = ""
	return product, nil
}

// Back leaves the product detail and returns to the active section.
func (s *State) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

func (s *State) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

func (s *State) ToggleDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkMode = !s.darkMode
	return s.darkMode
}

func (s *State) OpenModal(modal Modal) error {
	switch modal {
	case ModalAuth, ModalCart:
	case ModalCheckout:
		return s.BeginCheckout()
	default:
		return ErrUnknownModal
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal = modal
	return nil
}

func (s *State) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal = ModalNone
}

// AddToCart adds quantity units of a catalog product; quantities below one
// add a single unit.
func (s *State) AddToCart(productID string, quantity int) error {
	product, ok := s.catalog.Find(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(product, quantity)
	return nil
}

func (s *State) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
}

func (s *State) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.UpdateQuantity(productID, quantity)
}

// BeginCheckout opens the checkout form. Without a signed-in user it opens the
// auth modal instead.
func (s *State) BeginCheckout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		s.modal = ModalAuth
		return ErrAuthRequired
	}
	if s.cart.Len() == 0 {
		return ErrCartEmpty
	}

	if s.form.Email == "" {
		s.form.Email = s.user.Email
	}
	if s.form.Name == "" {
		s.form.Name = s.user.FullName
	}
	s.modal = ModalCheckout
	return nil
}

// EditCheckoutField sets one form field and clears its error.
func (s *State) EditCheckoutField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case checkout.FieldName:
		s.form.Name = value
	case checkout.FieldEmail:
		s.form.Email = value
	case checkout.FieldPhone:
		s.form.Phone = value
	case checkout.FieldAddress:
		s.form.Address = value
	case checkout.FieldCity:
		s.form.City = value
	case checkout.FieldPostalCode:
		s.form.PostalCode = value
	default:
		return checkout.ErrUnknownField
	}
	s.fieldErrors.Clear(field)
	return nil
}

// SetCheckoutForm replaces the whole form. Errors of changed fields are cleared.
func (s *State) SetCheckoutForm(form checkout.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := map[string]bool{
		checkout.FieldName:       form.Name != s.form.Name,
		checkout.FieldEmail:      form.Email != s.form.Email,
		checkout.FieldPhone:      form.Phone != s.form.Phone,
		checkout.FieldAddress:    form.Address != s.form.Address,
		checkout.FieldCity:       form.City != s.form.City,
		checkout.FieldPostalCode: form.PostalCode != s.form.PostalCode,
	}
	for field, c := range changed {
		if c {
			s.fieldErrors.Clear(field)
		}
	}
	s.form = form
}

// Checkout submits the current form and cart. The cart is cleared only when
// the order was placed; on any error it stays as it was so the shopper can
// retry. The state is not locked while the order is being relayed.
func (s *State) Checkout(ctx context.Context) (*checkout.Confirmation, error) {
	s.mu.Lock()
	if s.user == nil {
		s.modal = ModalAuth
		s.mu.Unlock()
		return nil, ErrAuthRequired
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return nil, ErrCartEmpty
	}
	form := s.form
	items := s.cart.Items()
	s.submitting = true
	s.mu.Unlock()

	confirmation, err := s.submitter.Submit(ctx, form, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		s.fieldErrors = verr.Fields
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	// The cart stays editable while the order is relayed; only the ordered
	// lines leave it.
	s.cart.Subtract(items)
	s.form = checkout.Form{}
	s.fieldErrors = checkout.FieldErrors{}
	s.confirmation = confirmation
	s.modal = ModalConfirmation
	return confirmation, nil
}

func (s *State) Confirmation() *checkout.Confirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmation
}

// DismissConfirmation closes the confirmation and returns to the home section.
func (s *State) DismissConfirmation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmation = nil
	s.modal = ModalNone
	s.section = SectionHome
	s.selected = nil
}

// SetUser mirrors the signed-in user. A successful sign-in closes the auth
// modal.
func (s *State) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	if user != nil && s.modal == ModalAuth {
		s.modal = ModalNone
	}
	if user == nil && s.modal == ModalCheckout {
		s.modal = ModalNone
	}
}

func (s *State) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
