package config

import (
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/adrg/xdg"

	"github.com/nao1215/tokhist/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tokhist"

	// DefaultURL is fetched when no URL is given.
	DefaultURL = "https://code.jquery.com/jquery-2.1.4.min.js"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of URLs processed concurrently.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies tokhist in HTTP requests.
	DefaultUserAgent = "tokhist/1.0 (+https://github.com/nao1215/tokhist)"

	// DefaultMaxBodySize limits the response body size. Larger bodies fail
	// the run instead of being truncated, since a truncated script would
	// not parse.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultMaxScripts caps external scripts followed from one HTML page.
	DefaultMaxScripts = 20

	// DefaultLexer is the tokenizer used when none is configured.
	DefaultLexer = "javascript"

	// DefaultTorStartupTimeout is how long the embedded Tor daemon may
	// take to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all options of a tokhist invocation. It is populated from
// the config file and CLI flags and passed down explicitly.
type Config struct {
	// URLs are the targets to fetch.
	URLs []string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// BatchSize is the number of URLs processed concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit config file path. Empty means search
	// the current and home directories.
	ConfigFilePath string

	// File is the loaded config file, nil when there is none.
	File *File

	// Explicit holds source settings given on the command line.
	// They win over every entry of File.
	Explicit SourceConfig

	// Lexer is the tokenizer name, see lexer.Lookup.
	Lexer string

	// Comments keeps comment tokens in the histogram.
	Comments bool

	// BarChar draws the bars.
	BarChar rune

	// MaxWidth is the length of the longest bar.
	MaxWidth int

	// SortDescending orders categories by count.
	SortDescending bool

	// Color enables ANSI colors on the terminal output.
	Color bool

	// NumberColor, WordColor and BarColor name the palette colors.
	// Empty keeps the default color.
	NumberColor string
	WordColor   string
	BarColor    string

	// JSONReport writes JSON instead of the histogram. Exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes Markdown instead of the histogram.
	MarkdownReport bool

	// ReportFile redirects the report to a file.
	ReportFile string

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded daemon's bootstrap.
	TorStartupTimeout time.Duration

	// DBDir is the history database directory.
	DBDir string

	// SaveToDB stores successful runs in the history database.
	SaveToDB bool

	// UserAgent is the User-Agent header.
	UserAgent string

	// MaxBodySize is the response body limit in bytes. 0 means the default.
	MaxBodySize int64

	// ExtractScripts tokenizes the scripts of HTML pages instead of the markup.
	ExtractScripts bool

	// FollowScripts also downloads <script src> files of HTML pages.
	FollowScripts bool

	// MaxScripts caps followed external scripts.
	MaxScripts int
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		BatchSize:         DefaultBatchSize,
		Lexer:             DefaultLexer,
		BarChar:           model.DefaultBarChar,
		MaxWidth:          model.DefaultMaxWidth,
		SortDescending:    model.DefaultSortDescending,
		Color:             true,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		ExtractScripts:    true,
		MaxScripts:        DefaultMaxScripts,
	}
}

// XDGDataDir returns the XDG data directory for tokhist,
// e.g. ~/.local/share/tokhist on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// RenderConfig returns the histogram drawing settings.
func (c *Config) RenderConfig() model.RenderConfig {
	return model.RenderConfig{
		BarChar:        c.BarChar,
		MaxWidth:       c.MaxWidth,
		SortDescending: c.SortDescending,
	}
}

// ApplyFile copies the render and color settings of f into c.
// CLI flags are applied afterwards and win.
func (c *Config) ApplyFile(f *File) error {
	c.File = f
	if f == nil {
		return nil
	}
	if f.Render.Bar != "" {
		r, err := ParseBarChar(f.Render.Bar)
		if err != nil {
			return err
		}
		c.BarChar = r
	}
	if f.Render.Width != 0 {
		c.MaxWidth = f.Render.Width
	}
	if f.Render.Sort != nil {
		c.SortDescending = *f.Render.Sort
	}
	if f.Colors.Enabled != nil {
		c.Color = *f.Colors.Enabled
	}
	if f.Colors.Number != "" {
		c.NumberColor = f.Colors.Number
	}
	if f.Colors.Word != "" {
		c.WordColor = f.Colors.Word
	}
	if f.Colors.Bar != "" {
		c.BarColor = f.Colors.Bar
	}
	return nil
}

// Source returns the settings for rawURL. Explicit settings come first,
// then the config file entry for rawURL, then the file defaults, then the
// global options.
func (c *Config) Source(rawURL string) SourceConfig {
	var sc SourceConfig
	if c.File != nil {
		sc = c.File.GetSourceConfig(rawURL)
	}
	if c.Explicit.Lexer != "" {
		sc.Lexer = c.Explicit.Lexer
	}
	if c.Explicit.ExtractScripts != nil {
		sc.ExtractScripts = c.Explicit.ExtractScripts
	}
	if c.Explicit.FollowScripts != nil {
		sc.FollowScripts = c.Explicit.FollowScripts
	}
	if sc.Lexer == "" {
		sc.Lexer = c.Lexer
	}
	if sc.ExtractScripts == nil {
		sc.ExtractScripts = boolPtr(c.ExtractScripts)
	}
	if sc.FollowScripts == nil {
		sc.FollowScripts = boolPtr(c.FollowScripts)
	}
	return sc
}

func boolPtr(b bool) *bool {
	return &b
}

// ParseBarChar returns the single character of s.
func ParseBarChar(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBarChar, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if !model.IsValidBarChar(r) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBarChar, s)
	}
	return r, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingTransports
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MaxWidth <= 0 {
		return ErrInvalidWidth
	}
	if !model.IsValidBarChar(c.BarChar) {
		return fmt.Errorf("%w: %q", ErrInvalidBarChar, c.BarChar)
	}
	if c.MaxScripts < 0 {
		return ErrInvalidMaxScripts
	}
	return nil
}
