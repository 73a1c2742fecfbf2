package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/output"
	"github.com/dshills/codelens/internal/review"
)

var testCmd = &cobra.Command{
	Use:   "test [provider]",
	Short: "Test provider API keys with a minimal request",
	Long: "Send the smallest possible request to each provider (or only the named one). " +
		"Connection tests do not start the rate-limit cooldown.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signalContext()
		defer cancel()

		var results []review.ConnectionResult
		if len(args) == 1 {
			results = []review.ConnectionResult{
				a.client.TestConnection(ctx, args[0], a.cfg.APIKey(args[0])),
			}
		} else {
			results = a.client.TestAll(ctx, a.cfg.APIKeys())
		}

		if err := output.WriteConnections(stdout, results, a.cfg.Format); err != nil {
			return err
		}
		for _, r := range results {
			if !r.Success {
				exitCode = ExitRuntimeError
			}
		}
		return nil
	},
}
