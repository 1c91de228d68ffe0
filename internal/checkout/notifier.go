package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/rs/zerolog"
)

var ErrUndelivered = errors.New("no channel accepted the order")

// Notifier forwards an order to one delivery channel.
type Notifier interface {
	Name() string
	Attempt(ctx context.Context, order models.OrderData) error
}

type Failure struct {
	Channel string `json:"channel"`
	Error   string `json:"error"`
}

type Result struct {
	Channel  string        `json:"channel"`
	Failures []Failure     `json:"failures,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Chain tries its notifiers one after another and stops at the first success.
type Chain struct {
	notifiers []Notifier
	logger    zerolog.Logger
}

func NewChain(logger zerolog.Logger, notifiers ...Notifier) *Chain {
	return &Chain{
		notifiers: notifiers,
		logger:    logger.With().Str("component", "notifier_chain").Logger(),
	}
}

func (c *Chain) Deliver(ctx context.Context, order models.OrderData) (Result, error) {
	start := time.Now()
	var result Result

	for _, n := range c.notifiers {
		err := n.Attempt(ctx, order)
		if err == nil {
			result.Channel = n.Name()
			result.Elapsed = time.Since(start)
			c.logger.Info().
				Str("order_id", order.OrderID).
				Str("channel", n.Name()).
				Int("failed_channels", len(result.Failures)).
				Msg("order delivered")
			return result, nil
		}

		c.logger.Warn().
			Err(err).
			Str("order_id", order.OrderID).
			Str("channel", n.Name()).
			Msg("order channel failed")
		result.Failures = append(result.Failures, Failure{Channel: n.Name(), Error: err.Error()})
	}

	result.Elapsed = time.Since(start)
	return result, ErrUndelivered
}
