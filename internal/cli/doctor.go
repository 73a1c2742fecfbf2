package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/config"
	"github.com/dshills/codelens/internal/providers"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("ok")
	warnMark = color.New(color.FgYellow).Sprint("warn")
	failMark = color.New(color.FgRed).Sprint("FAIL")
)

var flagOffline bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, storage and provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := false
		report := func(mark, format string, a ...any) {
			fmt.Fprintf(stdout, "[%s] %s\n", mark, fmt.Sprintf(format, a...))
			if mark == failMark {
				failed = true
			}
		}

		path, err := configPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			report(okMark, "config file %s", path)
		} else {
			report(warnMark, "no config file at %s (defaults in use; run 'codelens config init')", path)
		}

		a, err := openApp(nil)
		if err != nil {
			report(failMark, "%v", err)
			exitCode = ExitRuntimeError
			return nil
		}
		defer a.Close()
		report(okMark, "%s store opened", backendName(a.cfg))

		ctx, cancel := signalContext()
		defer cancel()

		keys := make(map[providers.ID]string)
		for _, id := range a.registry.IDs() {
			key := a.cfg.APIKey(string(id))
			if key == "" {
				report(warnMark, "%s: no API key", id)
				continue
			}
			report(okMark, "%s: API key %s", id, config.MaskKey(key))
			keys[id] = key
		}
		if len(keys) == 0 {
			report(failMark, "no provider has an API key (set OPENAI_API_KEY or GEMINI_API_KEY)")
		}

		if !flagOffline && len(keys) > 0 {
			for _, r := range a.client.TestAll(ctx, keys) {
				if _, tested := keys[providers.ID(r.Provider)]; !tested {
					continue
				}
				if r.Success {
					report(okMark, "%s: %s", r.Provider, r.Message)
				} else {
					report(failMark, "%s: %s", r.Provider, r.Message)
				}
			}
		}

		rows, err := providerStatus(ctx, a)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Remaining > 0 {
				report(warnMark, "%s: cooling down for %s", row.Provider, row.Remaining.Round(time.Second))
			}
		}

		if failed {
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&flagOffline, "offline", false, "Skip the live connection tests")
}
