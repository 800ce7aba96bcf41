package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	remindIn          time.Duration
	remindAt          string
	remindDeleteAfter bool
	remindCancel      bool
)

var remindCmd = &cobra.Command{
	Use:   "remind <id>",
	Short: "Schedule or cancel a reminder for an item",
	Long: `Schedule a one-shot reminder for a saved item. Scheduling again for
the same item replaces the previous reminder. The wake-up itself only fires
while the watch daemon is running; it rebuilds pending reminders from the
store on startup.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		id := args[0]

		if remindCancel {
			if err := a.mgr.Cancel(ctx, id); err != nil {
				return fmt.Errorf("failed to cancel reminder: %w", err)
			}
			fmt.Println("Reminder cancelled")
			return nil
		}

		in := remindIn
		if remindAt != "" {
			at, err := time.Parse(time.RFC3339, remindAt)
			if err != nil {
				return fmt.Errorf("invalid --at time: %w", err)
			}
			in = time.Until(at)
		}
		if in <= 0 {
			return errors.New("provide a future time via --in or --at")
		}

		at, err := a.mgr.ScheduleIn(ctx, id, in, remindDeleteAfter)
		if err != nil {
			return fmt.Errorf("failed to schedule reminder: %w", err)
		}
		fmt.Printf("Reminder set for %s\n", at.Format(time.RFC3339))
		return nil
	},
}

func init() {
	remindCmd.Flags().DurationVar(&remindIn, "in", 0, "schedule this far from now (e.g. 90m, 2h)")
	remindCmd.Flags().StringVar(&remindAt, "at", "", "schedule at an RFC3339 time")
	remindCmd.Flags().BoolVar(&remindDeleteAfter, "delete-after", false, "delete the item once the reminder is resolved")
	remindCmd.Flags().BoolVar(&remindCancel, "cancel", false, "cancel the pending reminder instead")
}
