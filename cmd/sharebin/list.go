package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sharebin/internal/domain"
)

var (
	listFilter string
	listSort   string
	listQuery  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.repo.Search(context.Background(), listQuery)
		if err != nil {
			return fmt.Errorf("failed to query inbox: %w", err)
		}

		items = domain.SortAndFilter(items, domain.Filter(listFilter), domain.Sort(listSort))
		items = domain.PartitionPinned(items)

		if len(items) == 0 {
			fmt.Println("Inbox is empty")
			return nil
		}
		for _, it := range items {
			printItem(it)
		}
		return nil
	},
}

func printItem(it domain.Item) {
	pin := " "
	if it.Pinned {
		pin = "*"
	}
	text := it.Text
	if it.CleanedText != "" {
		text = it.CleanedText
	}
	if it.Type == domain.TypeImage {
		text = fmt.Sprintf("%d image(s)", len(it.ImageRefs))
	}
	if r := []rune(text); len(r) > 60 {
		text = string(r[:60]) + "…"
	}
	text = strings.ReplaceAll(text, "\n", " ")

	line := fmt.Sprintf("%s %-8s %-6s %s  %s", pin, shortID(it.ID), it.Type, it.CreatedAt.Format("2006-01-02 15:04"), text)
	if it.Label != "" {
		line += fmt.Sprintf("  [%s]", it.Label)
	}
	if it.HasActiveReminder(time.Now()) {
		line += fmt.Sprintf("  (reminder %s)", it.ReminderAt.Format("2006-01-02 15:04"))
	}
	fmt.Println(line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", string(domain.FilterAll), "all, links, text or images")
	listCmd.Flags().StringVar(&listSort, "sort", string(domain.SortDate), "date, name or label")
	listCmd.Flags().StringVar(&listQuery, "query", "", "free-text search across text, cleaned URL and label")
}
