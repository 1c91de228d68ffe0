// Package view turns a client snapshot into the JSON documents the storefront
// client renders.
package view

import (
	"fmt"
	"strings"

	"github.com/perfura/storefront/internal/app"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/checkout"
	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const currency = "৳"

func Money(d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}

type ProductCard struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	Display  string          `json:"price_display"`
	ImageURL string          `json:"image_url"`
	Category string          `json:"category"`
	Volume   string          `json:"volume"`
	Notes    []string        `json:"notes"`
	Rating   float64         `json:"rating"`
}

func Card(p models.Product) ProductCard {
	return ProductCard{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Price:    p.Price,
		Display:  Money(p.Price),
		ImageURL: p.ImageURL,
		Category: p.Category,
		Volume:   p.Volume,
		Notes:    p.Notes,
		Rating:   p.Rating,
	}
}

func cards(products []models.Product) []ProductCard {
	out := make([]ProductCard, 0, len(products))
	for _, p := range products {
		out = append(out, Card(p))
	}
	return out
}

type Suggestion struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Price string `json:"price"`
}

type UserBadge struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Navbar struct {
	Sections    []app.Section `json:"sections"`
	Active      app.Section   `json:"active"`
	CartCount   int           `json:"cart_count"`
	User        *UserBadge    `json:"user,omitempty"`
	DarkMode    bool          `json:"dark_mode"`
	Query       string        `json:"query"`
	Suggestions []Suggestion  `json:"suggestions"`
}

func NewNavbar(snap app.Snapshot, products []models.Product) Navbar {
	nav := Navbar{
		Sections:    []app.Section{app.SectionHome, app.SectionCollections, app.SectionOffers, app.SectionAbout},
		Active:      snap.View(),
		CartCount:   snap.TotalItems,
		DarkMode:    snap.DarkMode,
		Query:       snap.Query,
		Suggestions: []Suggestion{},
	}
	if snap.User != nil {
		nav.User = &UserBadge{Email: snap.User.Email, DisplayName: app.DisplayName(snap.User)}
	}
	for _, p := range catalog.Suggest(snap.Query, products, catalog.SuggestionLimit) {
		nav.Suggestions = append(nav.Suggestions, Suggestion{ID: p.ID, Name: p.Name, Brand: p.Brand, Price: Money(p.Price)})
	}
	return nav
}

type Hero struct {
	Title    string `json:"title"`
	Tagline  string `json:"tagline"`
	Subtitle string `json:"subtitle"`
}

var hero = Hero{
	Title:    "Discover Your",
	Tagline:  "Signature Scent",
	Subtitle: "Perfura brings you the world's most exquisite fragrances, crafted with passion and perfected through time.",
}

type Home struct {
	Section  app.Section   `json:"section"`
	Hero     Hero          `json:"hero"`
	Heading  string        `json:"heading"`
	Loading  bool          `json:"loading"`
	Query    string        `json:"query"`
	Products []ProductCard `json:"products"`
	Empty    string        `json:"empty_message,omitempty"`
}

// NewHome renders the hero and the product grid filtered by the search query.
func NewHome(snap app.Snapshot, products []models.Product, loading bool) Home {
	filtered := catalog.Filter(snap.Query, products)
	home := Home{
		Section:  snap.Section,
		Hero:     hero,
		Heading:  "Our Premium Collection",
		Loading:  loading,
		Query:    snap.Query,
		Products: cards(filtered),
	}
	if len(filtered) == 0 && strings.TrimSpace(snap.Query) != "" {
		home.Empty = fmt.Sprintf("No products match your search for %q", snap.Query)
	}
	return home
}

type ProductDetail struct {
	Product      ProductCard     `json:"product"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	SubtotalText string          `json:"subtotal_display"`
	Reviews      []models.Review `json:"reviews"`
	ReviewCount  int             `json:"review_count"`
	CanReview    bool            `json:"can_review"`
	EmptyReviews string          `json:"empty_reviews_message,omitempty"`
}

// NewProductDetail renders a product with its reviews. Quantities below one
// are shown as one.
func NewProductDetail(p models.Product, reviews []models.Review, quantity int, user *models.User) ProductDetail {
	if quantity < 1 {
		quantity = 1
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	subtotal := models.CartItem{Product: p, Quantity: quantity}.Subtotal()
	detail := ProductDetail{
		Product:      Card(p),
		Description:  p.Description,
		Quantity:     quantity,
		Subtotal:     subtotal,
		SubtotalText: Money(subtotal),
		Reviews:      reviews,
		ReviewCount:  len(reviews),
		CanReview:    user != nil,
	}
	if len(reviews) == 0 {
		detail.EmptyReviews = "No reviews yet. Be the first to share your experience!"
	}
	return detail
}

type CartLine struct {
	Product  ProductCard     `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Lines           []CartLine      `json:"lines"`
	Count           int             `json:"count"`
	TotalItems      int             `json:"total_items"`
	Total           decimal.Decimal `json:"total"`
	TotalText       string          `json:"total_display"`
	Shipping        string          `json:"shipping"`
	CheckoutEnabled bool            `json:"checkout_enabled"`
	RequiresSignIn  bool            `json:"requires_sign_in"`
}

func NewCart(snap app.Snapshot) Cart {
	c := Cart{
		Lines:           make([]CartLine, 0, len(snap.Items)),
		Count:           len(snap.Items),
		TotalItems:      snap.TotalItems,
		Total:           snap.TotalPrice,
		TotalText:       Money(snap.TotalPrice),
		Shipping:        "Free",
		CheckoutEnabled: len(snap.Items) > 0,
		RequiresSignIn:  snap.User == nil,
	}
	for _, item := range snap.Items {
		c.Lines = append(c.Lines, CartLine{Product: Card(item.Product), Quantity: item.Quantity, Subtotal: item.Subtotal()})
	}
	return c
}

type Checkout struct {
	Form        checkout.Form        `json:"form"`
	FieldErrors checkout.FieldErrors `json:"field_errors"`
	Cart        Cart                 `json:"cart"`
	Submitting  bool                 `json:"submitting"`
}

func NewCheckout(snap app.Snapshot) Checkout {
	return Checkout{
		Form:        snap.Form,
		FieldErrors: snap.FieldErrors,
		Cart:        NewCart(snap),
		Submitting:  snap.Submitting,
	}
}

type Confirmation struct {
	Order       models.OrderData `json:"order"`
	Channel     string           `json:"channel"`
	Pending     bool             `json:"pending"`
	Notice      string           `json:"notice,omitempty"`
	MailtoURL   string           `json:"mailto_url,omitempty"`
	Summary     string           `json:"summary"`
	Receipt     string           `json:"receipt_url"`
	Delivery    string           `json:"delivery"`
	TotalText   string           `json:"total_display"`
	FailedCount int              `json:"failed_channels"`
}

// NewConfirmation renders a placed order. Orders kept for manual delivery
// carry a notice and the prepared mailto link.
func NewConfirmation(c *checkout.Confirmation) (Confirmation, error) {
	summary, err := checkout.EmailBody(c.Order)
	if err != nil {
		return Confirmation{}, err
	}
	out := Confirmation{
		Order:       c.Order,
		Channel:     c.Channel,
		Pending:     c.Pending(),
		MailtoURL:   c.MailtoURL,
		Summary:     summary,
		Receipt:     "/api/v1/orders/" + c.Order.OrderID + "/receipt",
		Delivery:    "Expected delivery time is 3-5 business days",
		TotalText:   Money(c.Order.TotalPrice),
		FailedCount: len(c.Failures),
	}
	if out.Pending {
		out.Notice = "Your order was saved. Please send the prepared email so we can process it."
	}
	return out, nil
}

// Page is everything a client needs to draw its current screen.
type Page struct {
	View         app.Section    `json:"view"`
	Modal        app.Modal      `json:"modal"`
	Navbar       Navbar         `json:"navbar"`
	Home         *Home          `json:"home,omitempty"`
	Detail       *ProductDetail `json:"detail,omitempty"`
	Cart         *Cart          `json:"cart,omitempty"`
	Checkout     *Checkout      `json:"checkout,omitempty"`
	Confirmation *Confirmation  `json:"confirmation,omitempty"`
}

func NewPage(snap app.Snapshot, products []models.Product, loading bool, reviews []models.Review) (Page, error) {
	page := Page{
		View:   snap.View(),
		Modal:  snap.Modal,
		Navbar: NewNavbar(snap, products),
	}

	if snap.Selected != nil {
		d := NewProductDetail(*snap.Selected, reviews, 1, snap.User)
		page.Detail = &d
	} else {
		h := NewHome(snap, products, loading)
		page.Home = &h
	}

	switch snap.Modal {
	case app.ModalCart:
		c := NewCart(snap)
		page.Cart = &c
	case app.ModalCheckout:
		c := NewCheckout(snap)
		page.Checkout = &c
	case app.ModalConfirmation:
		if snap.Confirmation != nil {
			c, err := NewConfirmation(snap.Confirmation)
			if err != nil {
				return Page{}, err
			}
			page.Confirmation = &c
		}
	}
	return page, nil
}
