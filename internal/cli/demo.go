package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/output"
	"github.com/dshills/codelens/internal/review"
)

var flagShowCode bool

var demoCmd = &cobra.Command{
	Use:   "demo [file]",
	Short: "Show a sample review without calling any provider",
	Long: "Show the canned sample review. Optional file is one of the bundled samples: " +
		demoNames() + ".",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := review.DemoFiles[0]
		if len(args) == 1 {
			f, ok := review.DemoFileByName(args[0])
			if !ok {
				return fmt.Errorf("unknown demo file %q (use %s)", args[0], demoNames())
			}
			file = f
		}

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if flagShowCode {
			fmt.Fprintf(stdout, "%s\n%s\n\n", file.Name, strings.TrimRight(file.Content, "\n"))
		}
		fmt.Fprintln(stderr, "Demo mode: this review is a bundled sample, no provider was called.")

		r := a.client.Demo(context.Background(), file.Name)
		report := output.NewReport(version, file.Name, review.DemoProvider, r, time.Now())
		if err := writeReport(report, a.cfg.Format); err != nil {
			fmt.Fprintf(stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func demoNames() string {
	names := make([]string, len(review.DemoFiles))
	for i, f := range review.DemoFiles {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func init() {
	demoCmd.Flags().BoolVar(&flagShowCode, "show-code", false, "Print the sample file before the review")
	demoCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
}
