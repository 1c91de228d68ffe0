package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/perfura/storefront/internal/api"
	"github.com/perfura/storefront/internal/app"
	"github.com/perfura/storefront/internal/auth"
	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/checkout"
	"github.com/perfura/storefront/internal/config"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/pending"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const sweepInterval = time.Minute

func serve(cfg *config.Config, logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the storefront HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Value: true, Usage: "apply pending migrations before serving"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("migrate") {
				if err := database.Migrate(cfg.Database.URL, database.Up); err != nil {
					return err
				}
			}

			db, err := database.NewConnection(c.Context, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info().Msg("connected to database")

			cat := catalog.New(catalog.DBSource{DB: db}, logger)
			cat.Load(c.Context)

			pendingStore, closePending, err := newPendingStore(c.Context, cfg.Pending, logger)
			if err != nil {
				return err
			}
			defer closePending()

			client := &http.Client{Timeout: cfg.Relay.Timeout}
			chain := checkout.NewChain(logger,
				checkout.NewFormRelay(client, cfg.Relay.FormRelayURL, cfg.Relay.SiteOrigin),
				checkout.NewFormAPI(client, cfg.Relay.FormAPIURL, cfg.Relay.AccessKey, cfg.Relay.FromName, cfg.Relay.Recipient),
				checkout.NewLocalFallback(pendingStore, checkout.LogOpener{Logger: logger}, cfg.Relay.Recipient, logger),
			)
			submitter := checkout.NewService(chain, cfg.Relay.Recipient, logger)

			accounts := auth.NewService(auth.DBUsers{DB: db}, logger)
			registry := app.NewRegistry(cat, submitter, accounts, cfg.Session.IdleTTL, logger)

			handler := api.NewServer(api.Deps{
				Registry:     registry,
				Catalog:      cat,
				Store:        api.DBStore{DB: db},
				Accounts:     accounts,
				Session:      cfg.Session,
				SupportEmail: cfg.Relay.SupportEmail,
				AdminToken:   cfg.Server.AdminToken,
				Logger:       logger,
			}).Router()

			server := &http.Server{
				Addr:         ":" + cfg.Server.Port,
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			g, ctx := errgroup.WithContext(c.Context)
			g.Go(func() error {
				return registry.Run(ctx, sweepInterval)
			})
			g.Go(func() error {
				logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				logger.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}
}

// newPendingStore uses Redis when configured and the local file otherwise.
func newPendingStore(ctx context.Context, cfg config.PendingConfig, logger zerolog.Logger) (pending.Store, func(), error) {
	if cfg.RedisURL != "" {
		client, err := pending.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return pending.NewRedisStore(client, cfg.RedisKey, logger), func() { client.Close() }, nil
	}

	store, err := pending.NewFileStore(cfg.FilePath, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
