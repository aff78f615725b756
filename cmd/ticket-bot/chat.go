package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"ticket-bot/internal/common/config"
	"ticket-bot/internal/transport"
)

var (
	chatUser   string
	chatMemory bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot on the terminal",
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
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		return chat(ctx, a)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "console", "user id the conversation runs under")
	chatCmd.Flags().BoolVar(&chatMemory, "memory", false, "use an in-memory catalog and session store")
}

func chat(ctx context.Context, a *app) error {
	source, storage := a.cfg.Catalog.Source, a.cfg.Bot.Storage
	ordersCfg := a.cfg.Orders
	if chatMemory {
		source, storage = config.StorageMemory, config.StorageMemory
		ordersCfg = config.OrdersConfig{}
	}

	cat, err := a.catalog(ctx, source)
	if err != nil {
		return err
	}
	store, err := a.sessions(ctx, storage)
	if err != nil {
		return err
	}
	rec, err := a.recorder(ctx, ordersCfg)
	if err != nil {
		return err
	}
	loop, err := a.loop(cat, store, rec)
	if err != nil {
		return err
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go loop.Run(loopCtx)

	return transport.NewConsole(loop, chatUser, os.Stdin, os.Stdout).Run(ctx)
}
