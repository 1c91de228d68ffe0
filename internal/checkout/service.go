package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/rs/zerolog"
)

// Confirmation is what the customer sees after a successful submission.
type Confirmation struct {
	Order     models.OrderData `json:"order"`
	Channel   string           `json:"channel"`
	MailtoURL string           `json:"mailto_url,omitempty"`
	Failures  []Failure        `json:"failures,omitempty"`
}

// Pending reports whether the order still needs to be emailed by hand.
func (c *Confirmation) Pending() bool {
	return c.Channel == ChannelLocalFallback
}

type Service struct {
	ids       *IDGenerator
	chain     *Chain
	recipient string
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(chain *Chain, recipient string, logger zerolog.Logger) *Service {
	return &Service{
		ids:       NewIDGenerator(),
		chain:     chain,
		recipient: recipient,
		logger:    logger.With().Str("component", "checkout").Logger(),
		now:       time.Now,
	}
}

// Submit validates the form, snapshots the order and forwards it through the
// channel chain. Validation failures return *ValidationError before any
// network call. The chain is not cancelled when ctx is.
func (s *Service) Submit(ctx context.Context, form Form, items []models.CartItem) (*Confirmation, error) {
	if errs := Validate(form); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	id, err := s.ids.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderConstruction, err)
	}
	order, err := NewOrder(id, form, items, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderConstruction, err)
	}

	result, err := s.chain.Deliver(context.WithoutCancel(ctx), order)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("order not delivered")
		return nil, err
	}

	confirmation := &Confirmation{
		Order:    order,
		Channel:  result.Channel,
		Failures: result.Failures,
	}
	if confirmation.Pending() {
		mailto, err := MailtoURL(s.recipient, order)
		if err == nil {
			confirmation.MailtoURL = mailto
		}
	}

	s.logger.Info().
		Str("order_id", order.OrderID).
		Str("channel", result.Channel).
		Str("total", order.TotalPrice.String()).
		Dur("elapsed", result.Elapsed).
		Msg("order placed")
	return confirmation, nil
}
