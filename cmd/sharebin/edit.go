package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pinRemove bool

var pinCmd = &cobra.Command{
	Use:   "pin <id>...",
	Short: "Pin items to the top of the inbox",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.PinBulk(context.Background(), args, !pinRemove); err != nil {
			return fmt.Errorf("failed to update pin state: %w", err)
		}
		action := "Pinned"
		if pinRemove {
			action = "Unpinned"
		}
		fmt.Printf("%s %d item(s)\n", action, len(args))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete items from the inbox",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.svc.DeleteBulk(context.Background(), args); err != nil {
			return fmt.Errorf("failed to delete: %w", err)
		}
		fmt.Printf("Deleted %d item(s)\n", len(args))
		return nil
	},
}

var labelCmd = &cobra.Command{
	Use:   "label <id> [label]",
	Short: "Set or clear an item's label",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		label := ""
		if len(args) == 2 {
			label = args[1]
		}
		if err := a.svc.UpdateLabel(context.Background(), args[0], label); err != nil {
			return fmt.Errorf("failed to update label: %w", err)
		}
		if label == "" {
			fmt.Println("Label cleared")
		} else {
			fmt.Printf("Label set to %q\n", label)
		}
		return nil
	},
}

func init() {
	pinCmd.Flags().BoolVar(&pinRemove, "unpin", false, "remove the pin instead")
}
