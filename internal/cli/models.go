package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model information",
}

type modelInfo struct {
	Provider providers.ID
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: providers.Gemini,
		Models: []string{
			"gemini-1.5-flash",
			"gemini-1.5-pro",
			"gemini-2.0-flash",
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: providers.OpenAI,
		Models: []string{
			"gpt-3.5-turbo",
			"gpt-4o-mini",
			"gpt-4o",
			"gpt-4.1-mini",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		reg, err := cfg.Registry()
		if err != nil {
			return err
		}
		for _, info := range knownModels {
			pc, err := reg.Lookup(string(info.Provider))
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s (cooldown %s):\n", pc.Name, pc.Cooldown)
			for _, m := range info.Models {
				marker := " "
				if m == pc.Model {
					marker = "*"
				}
				fmt.Fprintf(stdout, "  %s %s\n", marker, m)
			}
			if !contains(info.Models, pc.Model) {
				fmt.Fprintf(stdout, "  * %s (configured)\n", pc.Model)
			}
			fmt.Fprintln(stdout)
		}
		return nil
	},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
}
