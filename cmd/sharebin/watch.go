package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sharebin/internal/inbox"
	"sharebin/internal/reminder"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the inbox daemon: live feed plus reminder delivery",
	Long: `Run sharebin in the foreground. On startup, pending reminders are
rebuilt from the store (registered wake-ups do not survive a restart). The
live feed then follows every store change until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		log := a.log

		// Create context that listens for interrupt signals.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Deliver wake-ups through the state machine. Each fire event signals
		// completion exactly once, even when the handler bails out early.
		a.sched.Bind(func(payload reminder.FirePayload) {
			ev := reminder.NewFireEvent(payload, nil)
			a.mgr.HandleFire(ctx, ev)
		})

		restored, err := a.mgr.Restore(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to restore reminders")
		} else {
			log.WithField("count", restored).Info("Pending reminders rebuilt")
		}

		feed := inbox.NewFeed(a.repo, a.cfg.QueryDebounce, log)
		go feed.Run(ctx)

		go func() {
			for snapshot := range feed.Updates() {
				log.WithField("items", len(snapshot)).Info("Inbox updated")
			}
		}()

		log.Info("sharebin is running. Press Ctrl+C to exit.")
		<-ctx.Done()

		log.Info("Shutting down sharebin...")
		return nil
	},
}
