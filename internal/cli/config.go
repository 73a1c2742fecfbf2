package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codelens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codelens configuration",
}

var flagInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.Init(path, flagInitForce); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value in the config file. Keys use dotted paths, e.g. gemini.model.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.SetField(path, args[0], args[1]); err != nil {
			return err
		}

		shown := args[1]
		if args[0] == "openai.api_key" || args[0] == "gemini.api_key" {
			shown = config.MaskKey(shown)
		}
		fmt.Fprintf(stdout, "Set %s = %s\n", args[0], shown)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration (API keys masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg.Masked())
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by config set",
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range config.Keys() {
			fmt.Fprintln(stdout, k)
		}
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configKeysCmd)
	configInitCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing config file")
}
