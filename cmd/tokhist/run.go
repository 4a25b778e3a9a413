package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/tokhist/internal/colorize"
	"github.com/nao1215/tokhist/internal/config"
	"github.com/nao1215/tokhist/internal/database"
	"github.com/nao1215/tokhist/internal/fetch"
	"github.com/nao1215/tokhist/internal/model"
	"github.com/nao1215/tokhist/internal/pipeline"
	"github.com/nao1215/tokhist/internal/report"
	"github.com/nao1215/tokhist/internal/tor"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [url...]",
		Short: "Fetch scripts and print their token histograms",
		Long: `Run fetches each URL, tokenizes the body and prints a histogram of the
token categories.

HTML pages are not tokenized as a whole: their inline <script> elements
are, and with --follow-scripts their <script src> files too.

Examples:
  # Histogram of jQuery 2.1.4 (the default URL)
  tokhist run

  # Several scripts, four at a time, sorted by count
  tokhist run https://example.com/a.js https://example.com/b.js

  # Keep comments and draw with '#'
  tokhist run --comments --bar '#' https://example.com/app.js

  # Tokenize a Python file with a chroma lexer
  tokhist run --lexer python https://example.com/setup.py

  # Markdown report with a mermaid pie chart
  tokhist run --markdown -o report.md https://example.com/app.js

  # Through the Tor network
  tokhist run --tor http://<56 chars>.onion/app.js

Configuration file (.tokhist) example:
  defaults:
    headers:
      Accept-Language: en
  sources:
    example.com:
      cookie: "session=abc123"
      encoding: shift_jis
  render:
    bar: "#"
    width: 60`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	addRunFlags(cmd)
	return cmd
}

// addRunFlags registers the flags shared by the root and run commands.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	// Configuration file
	f.StringP("config", "c", "",
		"Configuration file path (default: .tokhist in current or home directory)")

	// Tokenizer flags
	f.StringP("lexer", "l", config.DefaultLexer,
		"Tokenizer: javascript, auto, or any chroma lexer name")
	f.Bool("comments", false, "Count comment tokens")

	// Rendering flags
	f.String("bar", string(model.DefaultBarChar), "Bar character")
	f.IntP("width", "w", model.DefaultMaxWidth, "Length of the longest bar")
	f.Bool("no-sort", false, "Keep first-seen category order instead of sorting by count")
	f.Bool("no-color", false, "Disable colored output (also honors NO_COLOR)")

	// Report flags
	f.BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	f.StringP("output", "o", "", "Write output to specified file path (creates directories if needed)")

	// Fetch flags
	f.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each HTTP request")
	f.IntP("batch", "b", config.DefaultBatchSize, "Number of URLs processed concurrently")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header")
	f.Int64("max-body-size", config.DefaultMaxBodySize, "Maximum response body size in bytes (0 for the default)")
	f.Bool("no-extract", false, "Tokenize HTML pages as they are instead of their scripts")
	f.Bool("follow-scripts", false, "Also fetch <script src> files of HTML pages")
	f.Int("max-scripts", config.DefaultMaxScripts, "Maximum external scripts per HTML page")

	// Transport flags
	f.StringP("proxy", "x", "", "Route requests through a SOCKS5 proxy (host:port)")
	f.Bool("tor", false, "Start an embedded Tor daemon and route requests through it")
	f.Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")

	// History flags
	f.String("db-dir", "", "History database directory (default: XDG data directory)")
	f.Bool("no-save", false, "Do not store runs in the history database")
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, getLogJSONFlag(cmd))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runURLs(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from the config file and the command flags.
// Flags that were set explicitly win over the file, source entries included.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given config file must exist. Without one, a missing
	// file just means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(file); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cfg.Lexer, err = flags.GetString("lexer"); err != nil {
		return nil, err
	}
	if flags.Changed("lexer") {
		cfg.Explicit.Lexer = cfg.Lexer
	}
	if cfg.Comments, err = flags.GetBool("comments"); err != nil {
		return nil, err
	}

	if flags.Changed("bar") {
		bar, err := flags.GetString("bar")
		if err != nil {
			return nil, err
		}
		if cfg.BarChar, err = config.ParseBarChar(bar); err != nil {
			return nil, err
		}
	}
	if flags.Changed("width") {
		if cfg.MaxWidth, err = flags.GetInt("width"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-sort") {
		noSort, err := flags.GetBool("no-sort")
		if err != nil {
			return nil, err
		}
		cfg.SortDescending = !noSort
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	if noColor || os.Getenv("NO_COLOR") != "" {
		cfg.Color = false
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	noExtract, err := flags.GetBool("no-extract")
	if err != nil {
		return nil, err
	}
	cfg.ExtractScripts = !noExtract
	if flags.Changed("no-extract") {
		cfg.Explicit.ExtractScripts = &cfg.ExtractScripts
	}
	if cfg.FollowScripts, err = flags.GetBool("follow-scripts"); err != nil {
		return nil, err
	}
	if flags.Changed("follow-scripts") {
		cfg.Explicit.FollowScripts = &cfg.FollowScripts
	}
	if cfg.MaxScripts, err = flags.GetInt("max-scripts"); err != nil {
		return nil, err
	}

	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.URLs = args
	if len(cfg.URLs) == 0 {
		cfg.URLs = []string{config.DefaultURL}
	}
	return cfg, nil
}

// runURLs processes every URL of cfg and writes the reports to stdout or
// the report file. It returns the joined errors of the failed runs.
func runURLs(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	palette, err := colorize.ParsePalette(cfg.NumberColor, cfg.WordColor, cfg.BarColor)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.Info("starting",
		"urls", cfg.URLs,
		"lexer", cfg.Lexer,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	httpClient, viaTor, cleanup, err := newHTTPClient(ctx, cfg, logger, stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	bp := pipeline.NewBatchProcessor(
		func(rawURL string) (*pipeline.Pipeline, error) {
			return newPipeline(cfg, rawURL, httpClient, viaTor, db, palette, logger), nil
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	runs, batchErr := bp.ProcessBatch(ctx, cfg.URLs)

	if err := outputReports(cfg, runs, stdout); err != nil {
		return err
	}
	if batchErr != nil {
		return batchErr
	}

	var errs []error
	for _, run := range runs {
		if run.Failed() {
			logger.Error("run failed", "url", run.URL, "error", run.Error)
			errs = append(errs, run.Error)
		}
	}
	return errors.Join(errs...)
}

// newHTTPClient returns the HTTP client for cfg's transport and whether it
// is routed through Tor. cleanup stops an embedded daemon and is never nil.
func newHTTPClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) (*http.Client, bool, func(), error) {
	noop := func() {}

	switch {
	case cfg.ProxyAddress != "":
		client, err := tor.NewClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, false, noop, fmt.Errorf("failed to create proxy client: %w", err)
		}
		status := client.CheckConnection(ctx)
		if status != tor.ProxyStatusOK {
			return nil, false, noop, fmt.Errorf("proxy check failed at %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
		return client.NewHTTPClient(), true, noop, nil

	case cfg.UseTor:
		client, daemon, err := startEmbeddedTor(ctx, cfg, logger, stderr)
		if err != nil {
			return nil, false, noop, err
		}
		cleanup := func() {
			logger.Info("stopping embedded Tor daemon")
			if err := daemon.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		return client.NewHTTPClient(), true, cleanup, nil

	default:
		return &http.Client{Timeout: cfg.Timeout}, false, noop, nil
	}
}

// startEmbeddedTor starts a Tor daemon and returns a verified client for it.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) (*tor.Client, *tor.Daemon, error) {
	fmt.Fprintln(stderr, "Starting embedded Tor daemon. This may take 1-3 minutes.")

	daemon := tor.NewDaemon(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := daemon.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon started", "socksAddr", daemon.SocksAddr())

	client, err := daemon.NewClient(cfg.Timeout)
	if err != nil {
		_ = daemon.Stop() //nolint:errcheck // best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = daemon.Stop() //nolint:errcheck // best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
	}
	return client, daemon, nil
}

// newPipeline builds the pipeline for rawURL with its source settings.
// db may be nil when history is disabled.
func newPipeline(cfg *config.Config, rawURL string, client *http.Client, viaTor bool, db *database.HistoryDB, palette colorize.Palette, logger *slog.Logger) *pipeline.Pipeline {
	src := cfg.Source(rawURL)

	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithTor(viaTor),
		fetch.WithLogger(logger),
	}
	if src.Cookie != "" {
		fetchOpts = append(fetchOpts, fetch.WithCookie(src.Cookie))
	}
	if len(src.Headers) > 0 {
		fetchOpts = append(fetchOpts, fetch.WithHeaders(src.Headers))
	}
	if src.Encoding != "" {
		fetchOpts = append(fetchOpts, fetch.WithCharset(src.Encoding))
	}
	fetcher := fetch.NewHTTPFetcher(client, fetchOpts...)

	opts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineLexer(src.Lexer, cfg.Comments),
		pipeline.WithPipelineScripts(*src.ExtractScripts, *src.FollowScripts, cfg.MaxScripts),
		pipeline.WithPipelineRender(cfg.RenderConfig()),
		pipeline.WithPipelineColor(cfg.Color, palette),
		pipeline.WithPipelineLogger(logger),
	}
	if db != nil {
		opts = append(opts, pipeline.WithPipelineSaver(db))
	}
	return pipeline.DefaultPipeline(fetcher, opts...)
}

// outputReports writes every run in the requested format to the report
// file, or to stdout.
func outputReports(cfg *config.Config, runs []*model.Run, stdout io.Writer) error {
	output := stdout
	toFile := cfg.ReportFile != ""
	if toFile {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer := newReportWriter(cfg, output, len(runs) > 1, toFile)
	for _, run := range runs {
		if _, err := writer.Write(run); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", run.URL, err)
		}
	}
	return nil
}

// newReportWriter selects the writer for cfg. Files never get ANSI colors.
func newReportWriter(cfg *config.Config, output io.Writer, batch, toFile bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewTextWriter(output,
			report.WithColor(cfg.Color && !toFile),
			report.WithHeader(batch),
		)
	}
}
