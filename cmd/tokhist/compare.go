package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/tokhist/internal/config"
	"github.com/nao1215/tokhist/internal/database"
	"github.com/nao1215/tokhist/internal/histogram"
	"github.com/nao1215/tokhist/internal/model"
)

// dateLayout is the format of the --since flag.
const dateLayout = "2006-01-02"

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <url>",
		Short: "Compare the histograms of two stored runs",
		Long: `Compare shows how the token histogram of a URL changed between two runs
stored in the history database.

By default the latest run is compared with the one before it. The output
lists the count of every category in both runs and the difference, and
whether the downloaded content itself changed.

Examples:
  # Compare the latest two runs
  tokhist compare https://code.jquery.com/jquery-2.1.4.min.js

  # Compare the latest run with run 5 (see 'tokhist history <url>')
  tokhist compare --with-id 5 https://example.com/app.js

  # Compare with the first run on or after a date
  tokhist compare --since 2026-01-01 https://example.com/app.js

  # Markdown output
  tokhist compare --markdown https://example.com/app.js`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	// Comparison target flags
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare the latest run with the run of this ID")
	cmd.Flags().StringP("since", "s", "",
		"Compare the latest run with the first run on or after this date (YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false, "Output comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output comparison in Markdown format")

	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// compareOptions selects the older run of a comparison and the output format.
type compareOptions struct {
	withID   int64
	since    string
	json     bool
	markdown bool
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	var (
		opts compareOptions
		err  error
	)
	if opts.withID, err = cmd.Flags().GetInt64("with-id"); err != nil {
		return err
	}
	if opts.since, err = cmd.Flags().GetString("since"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}

	// Validate before opening the database.
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	if opts.withID != 0 && opts.since != "" {
		return errors.New("--with-id and --since cannot be used together")
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return runComparison(cmd.Context(), db, cmd.OutOrStdout(), args[0], opts)
}

// runComparison loads the two runs of rawURL selected by opts, compares
// them and writes the result to out.
func runComparison(ctx context.Context, db *database.HistoryDB, out io.Writer, rawURL string, opts compareOptions) error {
	latest, err := db.LatestRuns(ctx, rawURL, 2)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(latest) == 0 {
		return fmt.Errorf("no runs found for %s", rawURL)
	}
	after := latest[0]

	var before *model.HistoryEntry
	switch {
	case opts.withID > 0:
		before, err = db.GetRun(ctx, opts.withID)
		if err != nil {
			return fmt.Errorf("failed to get run %d: %w", opts.withID, err)
		}
		if before == nil {
			return fmt.Errorf("run %d not found", opts.withID)
		}
		if before.URL != rawURL {
			return fmt.Errorf("run %d belongs to %s, not %s", opts.withID, before.URL, rawURL)
		}

	case opts.since != "":
		before, err = firstRunSince(ctx, db, rawURL, opts.since)
		if err != nil {
			return err
		}
		if before.ID == after.ID {
			return fmt.Errorf("only one run found since %s; at least 2 runs are required for comparison", opts.since)
		}

	default:
		if len(latest) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
		}
		before = latest[1]
	}

	c := histogram.Compare(before, after)

	switch {
	case opts.json:
		return writeJSON(out, c)
	case opts.markdown:
		return outputComparisonMarkdown(out, c)
	default:
		outputComparisonText(out, c)
		return nil
	}
}

// firstRunSince returns the oldest run of rawURL at or after date.
func firstRunSince(ctx context.Context, db *database.HistoryDB, rawURL, date string) (*model.HistoryEntry, error) {
	since, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}

	entries, err := db.ListRuns(ctx, rawURL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	// Entries are newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].Timestamp.Before(since) {
			return entries[i], nil
		}
	}
	return nil, fmt.Errorf("no runs found since %s", date)
}

// outputComparisonText writes the comparison as an aligned table.
func outputComparisonText(out io.Writer, c *model.Comparison) {
	fmt.Fprintf(out, "Histogram Comparison: %s\n", c.URL)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nContent: %s\n", contentStatus(c))
	fmt.Fprintf(out, "\nPrevious run: #%d %s\n", c.Before.ID, c.Before.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current run:  #%d %s\n", c.After.ID, c.After.Timestamp.Local().Format("2006-01-02 15:04:05"))

	width := len("Category")
	for _, d := range c.Deltas {
		width = max(width, len(d.Category))
	}
	row := fmt.Sprintf("  %%-%ds  %%10s  %%10s  %%8s\n", width)
	rule := "  " + strings.Repeat("-", width+34)

	fmt.Fprintln(out)
	fmt.Fprintf(out, row, "Category", "Previous", "Current", "Change")
	fmt.Fprintln(out, rule)
	for _, d := range c.Deltas {
		fmt.Fprintf(out, row, d.Category, strconv.Itoa(d.Before), strconv.Itoa(d.After), formatDelta(d.Delta))
	}
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, row, "Total",
		strconv.Itoa(c.Before.TotalTokens), strconv.Itoa(c.After.TotalTokens), formatDelta(c.TotalDelta))

	if !c.Changed() {
		fmt.Fprintln(out, "\nNo category counts changed.")
	}
}

// outputComparisonMarkdown writes the comparison as a Markdown document.
func outputComparisonMarkdown(out io.Writer, c *model.Comparison) error {
	md := markdown.NewMarkdown(out)

	md.H1f("Histogram Comparison: %s", c.URL)
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("Content:"), contentStatus(c))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Run", "ID", "Date", "Hash", "Tokens"},
		Rows: [][]string{
			{"Previous", strconv.FormatInt(c.Before.ID, 10), c.Before.Timestamp.Local().Format("2006-01-02 15:04"),
				markdown.Code(shortHash(c.Before.Hash)), strconv.Itoa(c.Before.TotalTokens)},
			{"Current", strconv.FormatInt(c.After.ID, 10), c.After.Timestamp.Local().Format("2006-01-02 15:04"),
				markdown.Code(shortHash(c.After.Hash)), strconv.Itoa(c.After.TotalTokens)},
		},
	})
	md.PlainText("")

	md.H2("Categories")
	md.PlainText("")
	rows := make([][]string, 0, len(c.Deltas)+1)
	for _, d := range c.Deltas {
		rows = append(rows, []string{d.Category, strconv.Itoa(d.Before), strconv.Itoa(d.After), formatDelta(d.Delta)})
	}
	rows = append(rows, []string{
		markdown.Bold("Total"),
		markdown.Bold(strconv.Itoa(c.Before.TotalTokens)),
		markdown.Bold(strconv.Itoa(c.After.TotalTokens)),
		markdown.Bold(formatDelta(c.TotalDelta)),
	})
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Previous", "Current", "Change"},
		Rows:   rows,
	})

	if !c.Changed() {
		md.PlainText("")
		md.Note("No category counts changed.")
	}

	return md.Build()
}

// contentStatus describes whether the downloaded body changed.
func contentStatus(c *model.Comparison) string {
	if c.ContentChanged {
		return "CHANGED (body hash differs)"
	}
	return "UNCHANGED (same body hash)"
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
