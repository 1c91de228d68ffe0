// Package pending records orders that no relay channel delivered, so they can
// be processed by hand.
package pending

import (
	"context"

	"github.com/perfura/storefront/internal/models"
)

// Store is an append-only list of pending orders.
type Store interface {
	Append(ctx context.Context, order models.PendingOrder) error
	List(ctx context.Context) ([]models.PendingOrder, error)
}
