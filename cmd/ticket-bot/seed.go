package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-bot/internal/catalog"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the flights table and fill it from the schedule",
	Long: `seed generates every flight of the configured schedule from today
until catalog.horizon_days and bulk loads them into PostgreSQL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return seed(ctx, a)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", true, "remove existing flights before seeding")
}

func seed(ctx context.Context, a *app) error {
	rules, err := a.schedule()
	if err != nil {
		return err
	}

	pg, err := a.postgres(ctx)
	if err != nil {
		return err
	}
	cat := catalog.NewPostgresCatalog(pg.DB, time.Now, a.log)

	if err := cat.Migrate(ctx); err != nil {
		return err
	}
	if seedReset {
		if err := cat.Reset(ctx); err != nil {
			return err
		}
	}

	flights := catalog.Generate(rules, time.Now(), a.cfg.Catalog.HorizonDays, a.loc)
	n, err := cat.Seed(ctx, flights)
	if err != nil {
		return err
	}

	a.zapLog.Info("flights seeded",
		zap.Int("flights", n),
		zap.Int("rules", len(rules)),
		zap.Int("horizonDays", a.cfg.Catalog.HorizonDays),
	)
	fmt.Printf("seeded %d flights\n", n)
	return nil
}
