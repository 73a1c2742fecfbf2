// Package cli wires together the Cobra command tree for the codelens binary.
//
// It defines the root command and all subcommands (review, demo, test,
// doctor, status, logs, history, config, models, version), binds flags,
// reads configuration, invokes the review client, and returns deterministic
// exit codes for scripting.
package cli
