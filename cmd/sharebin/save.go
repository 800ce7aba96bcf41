package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sharebin/internal/inbox"
	"sharebin/internal/linkclean"
)

var (
	saveLabel       string
	saveSource      string
	saveImages      []string
	saveRemindIn    time.Duration
	saveDeleteAfter bool
)

var saveCmd = &cobra.Command{
	Use:   "save [text or url]",
	Short: "Capture a shared text, link or set of images",
	Long: `Capture one share into the inbox. Text starting with http:// or
https:// is saved as a link with a canonicalized URL. With --image, the
given files are imported instead.

The whole invocation is one capture session: combining --remind-in with a
save sets the reminder on the single item created, never a duplicate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		session := inbox.NewSession(a.svc, inbox.PendingShare{
			Text:      strings.Join(args, " "),
			ImageRefs: saveImages,
			SourceApp: saveSource,
			Label:     saveLabel,
		})

		item, err := session.EnsureSaved(ctx)
		if errors.Is(err, inbox.ErrNothingToSave) {
			fmt.Println("Nothing to save")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}

		fmt.Printf("Saved %s (%s)\n", item.ID, item.Type)
		if item.CleanedText != "" && item.CleanedText != item.Text {
			fmt.Printf("Cleaned URL: %s\n", item.CleanedText)
		}
		if item.Label != "" {
			fmt.Printf("Label: %s\n", item.Label)
		}

		if saveRemindIn > 0 {
			at, err := a.mgr.ScheduleIn(ctx, item.ID, saveRemindIn, saveDeleteAfter)
			if err != nil {
				return fmt.Errorf("failed to set reminder: %w", err)
			}
			fmt.Printf("Reminder set for %s\n", at.Format(time.RFC3339))
		}
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean <url>",
	Short: "Canonicalize a URL without saving it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cleaned := linkclean.Clean(strings.TrimSpace(args[0]))
		fmt.Println(cleaned)
		if label := linkclean.SuggestLabel(cleaned); label != "" {
			fmt.Printf("Suggested label: %s\n", label)
		}
	},
}

func init() {
	saveCmd.Flags().StringVar(&saveLabel, "label", "", "label for the saved item")
	saveCmd.Flags().StringVar(&saveSource, "source", "", "identifier of the originating application")
	saveCmd.Flags().StringSliceVar(&saveImages, "image", nil, "image file to import (repeatable)")
	saveCmd.Flags().DurationVar(&saveRemindIn, "remind-in", 0, "also schedule a reminder this far from now")
	saveCmd.Flags().BoolVar(&saveDeleteAfter, "delete-after", false, "delete the item once the reminder is resolved")
}
