package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show API key and cooldown state per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := providerStatus(context.Background(), a)
		if err != nil {
			return err
		}
		return output.WriteStatus(stdout, rows, a.cfg.Format)
	},
}

func providerStatus(ctx context.Context, a *app) ([]output.ProviderStatus, error) {
	var rows []output.ProviderStatus
	for _, id := range a.registry.IDs() {
		cfg, err := a.registry.Lookup(string(id))
		if err != nil {
			return nil, err
		}
		key := a.cfg.APIKey(string(id))
		row := output.ProviderStatus{
			Provider:      string(id),
			Model:         cfg.Model,
			KeyConfigured: key != "",
			Cooldown:      cfg.Cooldown,
		}
		if key != "" {
			remaining, err := a.client.Cooldown(ctx, string(id), key)
			if err != nil {
				return nil, err
			}
			row.Remaining = remaining
		}
		rows = append(rows, row)
	}
	return rows, nil
}
