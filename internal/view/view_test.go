package view

import (
	"testing"

	"github.com/perfura/storefront/internal/app"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/checkout"
	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavbarSuggestions(t *testing.T) {
	snap := app.Snapshot{Section: app.SectionHome, Query: "a", TotalItems: 4}
	nav := NewNavbar(snap, catalog.SeedProducts())

	assert.Equal(t, 4, nav.CartCount)
	assert.Len(t, nav.Suggestions, catalog.SuggestionLimit)
	assert.Nil(t, nav.User)

	snap.Query = ""
	snap.User = &models.User{Email: "rafi@example.com"}
	nav = NewNavbar(snap, catalog.SeedProducts())
	assert.Empty(t, nav.Suggestions)
	require.NotNil(t, nav.User)
	assert.Equal(t, "rafi", nav.User.DisplayName)
}

func TestHomeFiltersByQuery(t *testing.T) {
	products := catalog.SeedProducts()

	home := NewHome(app.Snapshot{Query: ""}, products, false)
	assert.Len(t, home.Products, len(products))
	assert.Empty(t, home.Empty)

	home = NewHome(app.Snapshot{Query: "amber"}, products, false)
	require.NotEmpty(t, home.Products)
	for _, card := range home.Products {
		assert.NotEqual(t, "Vampire Blood", card.Name)
	}

	home = NewHome(app.Snapshot{Query: "zzz"}, products, false)
	assert.Empty(t, home.Products)
	assert.Equal(t, `No products match your search for "zzz"`, home.Empty)
}

func TestProductDetailSubtotal(t *testing.T) {
	p := catalog.SeedProducts()[0]

	detail := NewProductDetail(p, nil, 3, nil)
	assert.True(t, detail.Subtotal.Equal(decimal.NewFromInt(2397)))
	assert.Equal(t, "৳2397.00", detail.SubtotalText)
	assert.NotNil(t, detail.Reviews)
	assert.False(t, detail.CanReview)
	assert.NotEmpty(t, detail.EmptyReviews)

	detail = NewProductDetail(p, []models.Review{{ID: "r1", Rating: 5}}, 0, &models.User{Email: "a@b.co"})
	assert.Equal(t, 1, detail.Quantity)
	assert.Equal(t, 1, detail.ReviewCount)
	assert.True(t, detail.CanReview)
}

func TestCartView(t *testing.T) {
	products := catalog.SeedProducts()
	snap := app.Snapshot{
		Items: []models.CartItem{
			{Product: products[0], Quantity: 2},
			{Product: products[5], Quantity: 1},
		},
		TotalItems: 3,
		TotalPrice: decimal.NewFromInt(1798),
	}

	c := NewCart(snap)
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, 3, c.TotalItems)
	assert.Equal(t, "৳1798.00", c.TotalText)
	assert.True(t, c.CheckoutEnabled)
	assert.True(t, c.RequiresSignIn)
	assert.True(t, c.Lines[0].Subtotal.Equal(decimal.NewFromInt(1598)))

	empty := NewCart(app.Snapshot{})
	assert.False(t, empty.CheckoutEnabled)
	assert.NotNil(t, empty.Lines)
}

func TestConfirmationNoticeForPendingOrders(t *testing.T) {
	order := models.OrderData{
		OrderID:    "PF1",
		Items:      []models.CartItem{{Product: catalog.SeedProducts()[0], Quantity: 1}},
		TotalPrice: decimal.NewFromInt(799),
	}

	relayed, err := NewConfirmation(&checkout.Confirmation{Order: order, Channel: checkout.ChannelFormRelay})
	require.NoError(t, err)
	assert.False(t, relayed.Pending)
	assert.Empty(t, relayed.Notice)
	assert.Equal(t, "/api/v1/orders/PF1/receipt", relayed.Receipt)

	pending, err := NewConfirmation(&checkout.Confirmation{
		Order:     order,
		Channel:   checkout.ChannelLocalFallback,
		MailtoURL: "mailto:orders@perfura.shop",
		Failures:  []checkout.Failure{{Channel: "form-relay"}, {Channel: "form-api"}},
	})
	require.NoError(t, err)
	assert.True(t, pending.Pending)
	assert.NotEmpty(t, pending.Notice)
	assert.Equal(t, 2, pending.FailedCount)
	assert.Contains(t, pending.Summary, "Order ID: PF1")
}

func TestPageSelectsDetailOverSection(t *testing.T) {
	products := catalog.SeedProducts()
	snap := app.Snapshot{Section: app.SectionOffers, Modal: app.ModalCart, Selected: &products[1]}

	page, err := NewPage(snap, products, false, nil)
	require.NoError(t, err)
	assert.Equal(t, app.SectionProductDetail, page.View)
	assert.Nil(t, page.Home)
	require.NotNil(t, page.Detail)
	assert.NotNil(t, page.Cart)
	assert.Nil(t, page.Checkout)
}
