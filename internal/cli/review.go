package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/config"
	"github.com/dshills/codelens/internal/output"
	"github.com/dshills/codelens/internal/redact"
	"github.com/dshills/codelens/internal/review"
)

// Review flags
var (
	flagOut       string
	flagRules     string
	flagRulesFile string
	flagNoRedact  bool
	flagFailOn    string
	flagName      string
	flagForce     bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Enabled rules, comma-separated (e.g. security,performance)")
	cmd.Flags().StringVar(&flagRulesFile, "rules-file", "", "Rules file path (YAML or JSON)")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "none", "Exit 1 when an issue at or above this type exists (none, suggestion, warning, error)")
	cmd.Flags().StringVar(&flagName, "name", "", "File name to report when reading stdin")
	cmd.Flags().BoolVar(&flagForce, "force", false, "Review files matching privacy.skip_paths anyway")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagRules != "" {
		m["rules"] = flagRules
	}
	if flagRulesFile != "" {
		m["rules_file"] = flagRulesFile
	}
	if flagNoRedact {
		m["privacy.redact_secrets"] = "false"
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// buildRequest resolves rules and policy for a review of code.
func buildRequest(cfg config.Config, code, fileName string) (review.Request, error) {
	req := review.Request{
		Code:     code,
		FileName: fileName,
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey(cfg.Provider),
	}

	rf, err := review.LoadRules(cfg.RulesFile)
	if err != nil {
		return review.Request{}, err
	}
	if rf != nil {
		req.Rules = rf.Rules
		req.Policy = &rf.Policy
	}
	// An explicit rule list wins over the file's toggles.
	if len(cfg.Rules) > 0 {
		rules, err := review.RulesFromList(cfg.Rules)
		if err != nil {
			return review.Request{}, err
		}
		req.Rules = rules
	}
	return req, nil
}

// failOnRank returns the minimum TypeRank that fails the run, or 0 for none.
func failOnRank(threshold string) (int, error) {
	switch threshold {
	case "", "none":
		return 0, nil
	case "suggestion", "warning", "error":
		return review.TypeRank(review.IssueType(threshold)), nil
	default:
		return 0, fmt.Errorf("invalid --fail-on %q (use none, suggestion, warning or error)", threshold)
	}
}

func meetsThreshold(r review.Review, rank int) bool {
	if rank == 0 {
		return false
	}
	for _, is := range r.Issues {
		if review.TypeRank(is.Type) >= rank {
			return true
		}
	}
	return false
}

func readSource(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", displayName(path), err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%s is empty", displayName(path))
	}
	return string(data), nil
}

// signalContext is cancelled on interrupt so an in-flight request is abandoned.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

var reviewCmd = &cobra.Command{
	Use:   "review <file|->",
	Short: "Review a source file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rank, err := failOnRank(flagFailOn)
		if err != nil {
			return err
		}
		a, err := openApp(buildOverrides())
		if err != nil {
			return err
		}
		defer a.Close()
		exitCode = runReview(a, args[0], rank)
		return nil
	},
}

func runReview(a *app, path string, rank int) int {
	name := displayName(path)
	if path == "-" && flagName != "" {
		name = flagName
	}
	if path != "-" && !flagForce && redact.ShouldRedactPath(path, a.cfg.Privacy.SkipPaths) {
		fmt.Fprintf(stderr, "Error: %s matches privacy.skip_paths and will not be uploaded (use --force to override)\n", path)
		return ExitRuntimeError
	}
	if !a.cfg.Privacy.RedactSecrets {
		fmt.Fprintln(stderr, "WARNING: secret redaction is disabled")
	}

	code, err := readSource(path)
	if err != nil {
		return exitFor(err)
	}
	req, err := buildRequest(a.cfg, code, name)
	if err != nil {
		return exitFor(err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	r, err := a.client.ReviewCode(ctx, req)
	if err != nil {
		return exitFor(err)
	}

	cfg, _ := a.registry.Lookup(a.cfg.Provider)
	report := output.NewReport(version, name, string(cfg.ID), r, time.Now())
	if err := writeReport(report, a.cfg.Format); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return ExitRuntimeError
	}
	if meetsThreshold(r, rank) {
		return ExitFindings
	}
	return ExitSuccess
}

// writeReport honors --out, else writes to stdout.
func writeReport(report *output.Report, format string) error {
	if flagOut != "" {
		return output.WriteReport(report, format, flagOut)
	}
	w, err := output.GetWriter(format)
	if err != nil {
		return err
	}
	return w.Write(stdout, report)
}

func init() {
	addReviewFlags(reviewCmd)
}
