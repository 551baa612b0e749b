package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveWithTelegram bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			a.Close(closeCtx)
		}()
		if err := a.Start(ctx); err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return a.HTTPServer().Start(ctx) })
		if serveWithTelegram {
			bot, err := a.TelegramBot()
			if err != nil {
				return err
			}
			g.Go(func() error { return bot.Run(ctx) })
		}

		err = g.Wait()
		a.Logger().Info("interviewer stopped", zap.Error(err))
		return err
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveWithTelegram, "telegram", false, "also run the Telegram bot")
	rootCmd.AddCommand(serveCmd)
}
