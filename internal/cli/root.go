// Package cli implements the gofactory command line.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Version information, set at build time with -ldflags.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gofactory",
		Short: "Synthesize test data from schemas",
		Long: `gofactory generates randomized, schema-valid instances from JSON Schema,
OpenAPI v3 component schemas and Kubernetes CustomResourceDefinitions.

Output is one JSON document per line, reproducible with --seed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log factory events to stderr")

	root.AddCommand(NewGenerateCommand())
	root.AddCommand(NewDescribeCommand())
	root.AddCommand(NewVersionCommand())
	return root
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gofactory version: %s\n", Version)
			fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		},
	}
}

// newLogger returns a development logger when --verbose is set, else a no-op one.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
