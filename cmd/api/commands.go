package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/perfura/storefront/internal/catalog"
	"github.com/perfura/storefront/internal/config"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
	"github.com/perfura/storefront/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func migrateCommand(cfg *config.Config, logger zerolog.Logger) *cli.Command {
	run := func(direction database.Direction) cli.ActionFunc {
		return func(c *cli.Context) error {
			if err := database.Migrate(cfg.Database.URL, direction); err != nil {
				return err
			}
			logger.Info().Str("direction", string(direction)).Msg("migrations applied")
			return nil
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back the schema",
		Subcommands: []*cli.Command{
			{Name: "up", Usage: "apply all migrations", Action: run(database.Up)},
			{Name: "down", Usage: "roll back all migrations", Action: run(database.Down)},
		},
	}
}

// seedCommand stores the sample collection so a fresh database has products.
func seedCommand(cfg *config.Config, logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the sample products into an empty catalog",
		Action: func(c *cli.Context) error {
			db, err := database.NewConnection(c.Context, &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			existing, err := store.ListProducts(c.Context, db, 1, 1)
			if err != nil {
				return err
			}
			if existing.Total > 0 {
				logger.Info().Int64("products", existing.Total).Msg("catalog not empty, skipping seed")
				return nil
			}

			created, err := store.CreateProducts(c.Context, db, catalog.SeedProducts())
			if err != nil {
				return err
			}
			for _, p := range created {
				logger.Info().Str("id", p.ID).Str("name", p.Name).Msg("product seeded")
			}
			return nil
		},
	}
}

func productCommand(cfg *config.Config, logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "product",
		Usage: "manage catalog products",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "insert a single product",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "price", Required: true, Usage: "price in taka, e.g. 799.00"},
					&cli.StringFlag{Name: "brand", Value: "Perfura"},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "image"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "volume"},
					&cli.StringSliceFlag{Name: "note"},
				},
				Action: func(c *cli.Context) error {
					price, err := decimal.NewFromString(c.String("price"))
					if err != nil {
						return fmt.Errorf("invalid price %q: %w", c.String("price"), err)
					}

					db, err := database.NewConnection(c.Context, &cfg.Database)
					if err != nil {
						return err
					}
					defer db.Close()

					product, err := store.CreateProduct(c.Context, db, models.Product{
						Name:        c.String("name"),
						Brand:       c.String("brand"),
						Price:       price,
						Description: c.String("description"),
						ImageURL:    c.String("image"),
						Category:    c.String("category"),
						Volume:      c.String("volume"),
						Notes:       c.StringSlice("note"),
					})
					if err != nil {
						return err
					}
					logger.Info().Str("id", product.ID).Str("name", product.Name).Msg("product added")
					return nil
				},
			},
		},
	}
}

func pendingCommand(cfg *config.Config, logger zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "inspect orders waiting for manual delivery",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print pending orders as JSON lines",
				Action: func(c *cli.Context) error {
					pendingStore, closePending, err := newPendingStore(c.Context, cfg.Pending, logger)
					if err != nil {
						return err
					}
					defer closePending()

					orders, err := pendingStore.List(c.Context)
					if err != nil {
						return err
					}

					enc := json.NewEncoder(os.Stdout)
					for _, o := range orders {
						if err := enc.Encode(o); err != nil {
							return err
						}
					}
					logger.Info().Int("count", len(orders)).Msg("pending orders listed")
					return nil
				},
			},
			{
				Name:  "summary",
				Usage: "print one line per pending order",
				Action: func(c *cli.Context) error {
					pendingStore, closePending, err := newPendingStore(c.Context, cfg.Pending, logger)
					if err != nil {
						return err
					}
					defer closePending()

					orders, err := pendingStore.List(c.Context)
					if err != nil {
						return err
					}
					for _, o := range orders {
						fmt.Printf("%s\t%s\t%s\t%s\n",
							o.OrderID,
							time.UnixMilli(o.Timestamp).Format(time.RFC3339),
							o.CustomerInfo.Email,
							o.TotalPrice.String())
					}
					return nil
				},
			},
		},
	}
}
