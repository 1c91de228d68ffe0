package checkout

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderConstruction = errors.New("order could not be created")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderIDExhausted  = errors.New("no free order id")
)

const maxIDAttempts = 8

// IDGenerator issues ids of the form "PF<unix millis><0-999>". Two ids can only
// collide within the same millisecond, so the generator remembers the ids of
// the current millisecond and draws again on a clash.
type IDGenerator struct {
	now    func() time.Time
	suffix func() int

	mu         sync.Mutex
	lastMillis int64
	issued     map[string]struct{}
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		now:    time.Now,
		suffix: func() int { return rand.Intn(1000) },
	}
}

func (g *IDGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()
	if millis != g.lastMillis || g.issued == nil {
		g.lastMillis = millis
		g.issued = make(map[string]struct{})
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := "PF" + strconv.FormatInt(millis, 10) + strconv.Itoa(g.suffix())
		if _, taken := g.issued[id]; taken {
			continue
		}
		g.issued[id] = struct{}{}
		return id, nil
	}

	return "", ErrOrderIDExhausted
}

// NewOrder snapshots the form and cart into an immutable order.
func NewOrder(id string, form Form, items []models.CartItem, now time.Time) (models.OrderData, error) {
	if len(items) == 0 {
		return models.OrderData{}, ErrEmptyCart
	}

	snapshot := make([]models.CartItem, len(items))
	copy(snapshot, items)

	total := decimal.Zero
	for _, item := range snapshot {
		if item.Quantity <= 0 {
			return models.OrderData{}, fmt.Errorf("item %s has quantity %d", item.Product.ID, item.Quantity)
		}
		total = total.Add(item.Subtotal())
	}

	return models.OrderData{
		OrderID:      id,
		CustomerInfo: form.customer(),
		Items:        snapshot,
		TotalPrice:   total,
		OrderDate:    now.UTC(),
	}, nil
}
