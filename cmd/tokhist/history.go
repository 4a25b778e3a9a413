package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/tokhist/internal/config"
	"github.com/nao1215/tokhist/internal/database"
	"github.com/nao1215/tokhist/internal/model"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List stored runs",
		Long: `History lists the runs stored in the history database.

Without a URL it lists every URL that has stored runs. With a URL it
lists the runs of that URL, newest first.

Examples:
  # List every URL in the database
  tokhist history

  # Last 5 runs of a script
  tokhist history -n 5 https://code.jquery.com/jquery-2.1.4.min.js`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		return listURLs(ctx, db, out, jsonOutput)
	}
	return listRuns(ctx, db, out, args[0], limit, jsonOutput)
}

// openHistoryDB opens the database named by the --db-dir flag, or the
// one in the XDG data directory. The database must already exist.
func openHistoryDB(cmd *cobra.Command) (*database.HistoryDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database (run 'tokhist run' first): %w", err)
	}
	return db, nil
}

// listURLs prints every URL with stored runs.
func listURLs(ctx context.Context, db *database.HistoryDB, out io.Writer, jsonOutput bool) error {
	urls, err := db.ListURLs(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(out, urls)
	}

	if len(urls) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'tokhist run <url>' to record one.")
		return nil
	}

	fmt.Fprintf(out, "Recorded URLs (%d):\n\n", len(urls))
	for _, u := range urls {
		fmt.Fprintf(out, "  • %s\n", u)
	}
	fmt.Fprintln(out, "\nUse 'tokhist history <url>' to see the runs of a URL.")
	return nil
}

// listRuns prints the runs of rawURL, newest first.
func listRuns(ctx context.Context, db *database.HistoryDB, out io.Writer, rawURL string, limit int, jsonOutput bool) error {
	entries, err := db.ListRuns(ctx, rawURL, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(out, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No runs found for %s\n", rawURL)
		return nil
	}

	fmt.Fprintf(out, "Runs of %s (%d):\n\n", rawURL, len(entries))
	fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %-12s  %s\n", "ID", "Date", "Tokens", "Hash", "Top categories")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 72))
	for _, e := range entries {
		fmt.Fprintf(out, "  %-6d  %-19s  %-8d  %-12s  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.TotalTokens,
			shortHash(e.Hash),
			topCategories(e.Histogram, 3),
		)
	}
	fmt.Fprintln(out, "\nUse 'tokhist compare <url>' to compare the latest two runs.")
	return nil
}

// shortHash returns the first 12 characters of a digest.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	if hash == "" {
		return "-"
	}
	return hash
}

// topCategories formats the n largest categories, e.g. "Punctuator:40 Identifier:31".
func topCategories(h *model.Histogram, n int) string {
	if h.Len() == 0 {
		return "-"
	}
	entries := h.Entries()
	slices.SortStableFunc(entries, func(a, b model.HistogramEntry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s:%d", e.Category, e.Count)
	}
	return strings.Join(parts, " ")
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
