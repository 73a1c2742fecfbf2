package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/output"
)

var flagClear bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect diagnostic logs",
}

var logsErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show the last failed provider interactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := context.Background()

		if flagClear {
			if err := a.client.ClearErrorLog(ctx); err != nil {
				return fmt.Errorf("clearing error log: %w", err)
			}
			fmt.Fprintln(stdout, "Error log cleared.")
			return nil
		}
		entries, err := a.client.ErrorLog(ctx)
		if err != nil {
			return fmt.Errorf("reading error log: %w", err)
		}
		return output.WriteErrorLog(stdout, entries, a.cfg.Format)
	},
}

var logsSuccessCmd = &cobra.Command{
	Use:   "success",
	Short: "Show previews of the last successful responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := context.Background()

		if flagClear {
			if err := a.client.ClearSuccessLog(ctx); err != nil {
				return fmt.Errorf("clearing success log: %w", err)
			}
			fmt.Fprintln(stdout, "Success log cleared.")
			return nil
		}
		entries, err := a.client.SuccessLog(ctx)
		if err != nil {
			return fmt.Errorf("reading success log: %w", err)
		}
		return output.WriteSuccessLog(stdout, entries, a.cfg.Format)
	},
}

func init() {
	logsCmd.AddCommand(logsErrorsCmd)
	logsCmd.AddCommand(logsSuccessCmd)
	for _, c := range []*cobra.Command{logsErrorsCmd, logsSuccessCmd} {
		c.Flags().BoolVar(&flagClear, "clear", false, "Clear the log instead of printing it")
	}
}
