package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/output"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := context.Background()

		if flagClear {
			if err := a.client.ClearHistory(ctx); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Fprintln(stdout, "History cleared.")
			return nil
		}
		entries, err := a.client.History(ctx)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		if flagLimit > 0 && len(entries) > flagLimit {
			entries = entries[:flagLimit]
		}
		return output.WriteHistory(stdout, entries, a.cfg.Format)
	},
}

func init() {
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Remove all history entries")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 0, "Show at most this many entries")
}
