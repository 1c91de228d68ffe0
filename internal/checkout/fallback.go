package checkout

import (
	"context"
	"time"

	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/pending"
	"github.com/rs/zerolog"
)

// MailOpener hands a prepared mailto link to whatever can open a mail client.
type MailOpener interface {
	Open(ctx context.Context, order models.OrderData, mailto string) error
}

// LogOpener records the link in the log so an operator can send it by hand.
type LogOpener struct {
	Logger zerolog.Logger
}

func (o LogOpener) Open(_ context.Context, order models.OrderData, mailto string) error {
	o.Logger.Info().
		Str("order_id", order.OrderID).
		Str("mailto", mailto).
		Msg("order waiting for manual email")
	return nil
}

// LocalFallback keeps the order for manual delivery. It never fails: the
// customer has already been told the order is placed.
type LocalFallback struct {
	store     pending.Store
	opener    MailOpener
	recipient string
	logger    zerolog.Logger
	now       func() time.Time
}

func NewLocalFallback(store pending.Store, opener MailOpener, recipient string, logger zerolog.Logger) *LocalFallback {
	return &LocalFallback{
		store:     store,
		opener:    opener,
		recipient: recipient,
		logger:    logger.With().Str("component", "local_fallback").Logger(),
		now:       time.Now,
	}
}

func (f *LocalFallback) Name() string { return ChannelLocalFallback }

func (f *LocalFallback) Attempt(ctx context.Context, order models.OrderData) error {
	record := models.PendingOrder{
		OrderData: order,
		Timestamp: f.now().UnixMilli(),
		Status:    models.PendingStatusEmail,
	}
	if err := f.store.Append(ctx, record); err != nil {
		f.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to save pending order")
	}

	mailto, err := MailtoURL(f.recipient, order)
	if err != nil {
		f.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to build mailto link")
		return nil
	}
	if err := f.opener.Open(ctx, order, mailto); err != nil {
		f.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to open mail client")
	}
	return nil
}
