package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	tlog "github.com/nao1215/tokhist/internal/log"
)

// NewRootCmd creates the root command. Without a subcommand it behaves
// like "tokhist run".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokhist [url...]",
		Short: "Print a histogram of the token categories of a script",
		Long: `tokhist downloads a script, tokenizes it and prints a colorized ASCII
histogram with one line per token category.

Without arguments it fetches jQuery 2.1.4 from code.jquery.com.
Successful runs are stored so that 'tokhist compare' can show how a
script changed over time.`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		RunE:          runRunCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	addRunFlags(cmd)

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tokhist:", err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

func getLogJSONFlag(cmd *cobra.Command) bool {
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		logJSON, err = cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return false
		}
	}
	return logJSON
}

// setupLogger creates the masking logger on w.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return tlog.NewSecureJSONLogger(w, verbose)
	}
	return tlog.NewSecureLogger(w, verbose)
}
