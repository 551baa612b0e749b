package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run interviews over a Telegram bot",
	Long:  "Run interviews over a Telegram bot. Candidates pick a profile from profiles.dir with /start <name>.",
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

		bot, err := a.TelegramBot()
		if err != nil {
			return err
		}
		return bot.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
}
