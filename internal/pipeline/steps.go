package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/tokhist/internal/colorize"
	"github.com/nao1215/tokhist/internal/fetch"
	"github.com/nao1215/tokhist/internal/histogram"
	"github.com/nao1215/tokhist/internal/lexer"
	"github.com/nao1215/tokhist/internal/model"
)

// Step names as recorded in model.Run.PerformedSteps.
const (
	StepFetch     = "fetch"
	StepExtract   = "extract"
	StepTokenize  = "tokenize"
	StepAggregate = "aggregate"
	StepRender    = "render"
	StepColorize  = "colorize"
	StepSave      = "save"
)

// DefaultMaxScripts caps how many external scripts one page may pull in.
const DefaultMaxScripts = 20

// FetchStep downloads the run's URL. The body becomes the run's only
// source until ExtractStep replaces it.
type FetchStep struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher fetch.Fetcher, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		fetcher: fetcher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do executes the fetch step. Any failure, including a non-2xx status,
// is returned as is so that callers can match *fetch.NetworkError.
func (s *FetchStep) Do(ctx context.Context, run *model.Run) error {
	resp, err := s.fetcher.Fetch(ctx, run.URL)
	if err != nil {
		return err
	}
	run.Response = resp
	run.Sources = []model.Source{{Name: run.URL, Content: resp.Body}}

	s.logger.Info("fetched",
		"url", run.URL,
		"status", resp.StatusCode,
		"size", resp.Size,
	)
	return nil
}

// ExtractStep replaces an HTML body with the scripts it contains.
// Non-HTML responses pass through untouched.
type ExtractStep struct {
	fetcher    fetch.Fetcher
	follow     bool
	maxScripts int
	logger     *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithFollowScripts makes the step also download <script src> files.
// A failed download fails the run.
func WithFollowScripts(follow bool) ExtractStepOption {
	return func(s *ExtractStep) {
		s.follow = follow
	}
}

// WithMaxScripts limits the number of external scripts downloaded.
// Values below 1 are ignored.
func WithMaxScripts(n int) ExtractStepOption {
	return func(s *ExtractStep) {
		if n > 0 {
			s.maxScripts = n
		}
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates an ExtractStep. fetcher is used only when
// following external scripts.
func NewExtractStep(fetcher fetch.Fetcher, opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		fetcher:    fetcher,
		maxScripts: DefaultMaxScripts,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return StepExtract
}

// Do executes the extract step.
func (s *ExtractStep) Do(ctx context.Context, run *model.Run) error {
	if run.Response == nil || !run.Response.IsHTML() {
		s.logger.Debug("skipping extraction, not HTML", "url", run.URL)
		return nil
	}

	base := run.Response.FinalURL
	if base == "" {
		base = run.URL
	}
	scripts, err := fetch.ExtractScripts(base, run.Response.Body)
	if err != nil {
		return fmt.Errorf("failed to extract scripts from %s: %w", base, err)
	}

	sources := scripts.Inline
	if s.follow {
		external := scripts.External
		if len(external) > s.maxScripts {
			s.logger.Warn("too many external scripts, truncating",
				"url", run.URL,
				"found", len(external),
				"limit", s.maxScripts,
			)
			external = external[:s.maxScripts]
		}
		for _, u := range external {
			if err := ctx.Err(); err != nil {
				return err
			}
			resp, err := s.fetcher.Fetch(ctx, u)
			if err != nil {
				return fmt.Errorf("failed to fetch external script: %w", err)
			}
			sources = append(sources, model.Source{Name: u, Content: resp.Body})
		}
	}

	run.Sources = sources
	s.logger.Debug("extracted scripts",
		"url", run.URL,
		"inline", len(scripts.Inline),
		"external", len(scripts.External),
		"sources", len(sources),
	)
	return nil
}

// TokenizeStep turns every source into tokens.
type TokenizeStep struct {
	lexerName string
	lexerOpts []lexer.Option
	tokenizer lexer.Tokenizer
	logger    *slog.Logger
}

// TokenizeStepOption configures a TokenizeStep.
type TokenizeStepOption func(*TokenizeStep)

// WithLexer selects the tokenizer by name, resolved through lexer.Lookup.
func WithLexer(name string, opts ...lexer.Option) TokenizeStepOption {
	return func(s *TokenizeStep) {
		s.lexerName = name
		s.lexerOpts = opts
	}
}

// WithTokenizer uses t instead of looking one up by name.
func WithTokenizer(t lexer.Tokenizer) TokenizeStepOption {
	return func(s *TokenizeStep) {
		s.tokenizer = t
	}
}

// WithTokenizeLogger sets a custom logger for the tokenize step.
func WithTokenizeLogger(logger *slog.Logger) TokenizeStepOption {
	return func(s *TokenizeStep) {
		s.logger = logger
	}
}

// NewTokenizeStep creates a TokenizeStep using the JavaScript tokenizer
// unless configured otherwise.
func NewTokenizeStep(opts ...TokenizeStepOption) *TokenizeStep {
	s := &TokenizeStep{
		lexerName: lexer.NameJavaScript,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *TokenizeStep) Name() string {
	return StepTokenize
}

// Do executes the tokenize step. The first source that fails to parse
// fails the run and no tokens are kept.
func (s *TokenizeStep) Do(_ context.Context, run *model.Run) error {
	tok := s.tokenizer
	if tok == nil {
		var err error
		tok, err = lexer.Lookup(s.lexerName, mediaType(run), s.lexerOpts...)
		if err != nil {
			return err
		}
	}
	run.Lexer = tok.Name()

	tokens := make([]model.Token, 0)
	for _, src := range run.Sources {
		toks, err := tok.Tokenize(src.Content)
		if err != nil {
			var perr *lexer.ParseError
			if errors.As(err, &perr) && perr.Source == "" {
				perr.Source = src.Name
			}
			return err
		}
		tokens = append(tokens, toks...)
	}
	run.Tokens = tokens

	s.logger.Debug("tokenized",
		"url", run.URL,
		"lexer", run.Lexer,
		"sources", len(run.Sources),
		"tokens", len(tokens),
	)
	return nil
}

// mediaType is the media type the sources of run are written in.
// Scripts extracted from HTML are JavaScript.
func mediaType(run *model.Run) string {
	if run.Response == nil {
		return ""
	}
	if run.Response.IsHTML() {
		return "text/javascript"
	}
	return run.Response.MediaType()
}

// AggregateStep counts the run's tokens per category.
type AggregateStep struct{}

// NewAggregateStep creates an AggregateStep.
func NewAggregateStep() *AggregateStep {
	return &AggregateStep{}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return StepAggregate
}

// Do executes the aggregate step.
func (s *AggregateStep) Do(_ context.Context, run *model.Run) error {
	run.Histogram = histogram.Aggregate(run.Tokens)
	return nil
}

// RenderStep draws the histogram as plain text.
type RenderStep struct {
	renderer histogram.Renderer
	cfg      model.RenderConfig
}

// NewRenderStep creates a RenderStep. A nil renderer selects the ASCII renderer.
func NewRenderStep(renderer histogram.Renderer, cfg model.RenderConfig) *RenderStep {
	if renderer == nil {
		renderer = histogram.NewASCIIRenderer()
	}
	return &RenderStep{renderer: renderer, cfg: cfg}
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return StepRender
}

// Do executes the render step.
func (s *RenderStep) Do(_ context.Context, run *model.Run) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	h := run.Histogram
	if h == nil {
		h = model.NewHistogram()
	}
	run.Render = s.cfg
	run.Rendered = s.renderer.Render(h, s.cfg)
	return nil
}

// ColorizeStep adds ANSI colors to the rendered text.
type ColorizeStep struct {
	palette colorize.Palette
}

// NewColorizeStep creates a ColorizeStep.
func NewColorizeStep(palette colorize.Palette) *ColorizeStep {
	return &ColorizeStep{palette: palette}
}

// Name returns the step name.
func (s *ColorizeStep) Name() string {
	return StepColorize
}

// Do executes the colorize step. The bar character is taken from the
// configuration the text was rendered with.
func (s *ColorizeStep) Do(_ context.Context, run *model.Run) error {
	c := colorize.NewANSIColorizer(
		colorize.WithBarChar(run.Render.BarChar),
		colorize.WithPalette(s.palette),
	)
	run.Colorized = c.Colorize(run.Rendered)
	return nil
}

// RunSaver persists a finished run.
type RunSaver interface {
	SaveRun(ctx context.Context, run *model.Run) error
}

// SaveStep stores the run in the history database.
type SaveStep struct {
	saver RunSaver
}

// NewSaveStep creates a SaveStep.
func NewSaveStep(saver RunSaver) *SaveStep {
	return &SaveStep{saver: saver}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return StepSave
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, run *model.Run) error {
	if err := s.saver.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Lexer is the tokenizer name passed to lexer.Lookup.
	Lexer string

	// Comments keeps comment tokens.
	Comments bool

	// ExtractScripts tokenizes the scripts of HTML pages instead of the page.
	ExtractScripts bool

	// FollowScripts also downloads external <script src> files.
	FollowScripts bool

	// MaxScripts caps the number of external scripts.
	MaxScripts int

	// Render configures the histogram text.
	Render model.RenderConfig

	// Color enables the colorize step.
	Color bool

	// Palette holds the colors used when Color is set.
	Palette colorize.Palette

	// Saver, when set, adds a save step at the end.
	Saver RunSaver

	// Logger is passed to the pipeline and its steps.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineLexer sets the tokenizer name and comment handling.
func WithPipelineLexer(name string, comments bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Lexer = name
		c.Comments = comments
	}
}

// WithPipelineScripts configures HTML script extraction.
func WithPipelineScripts(extract, follow bool, maxScripts int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ExtractScripts = extract
		c.FollowScripts = follow
		c.MaxScripts = maxScripts
	}
}

// WithPipelineRender sets the render configuration.
func WithPipelineRender(cfg model.RenderConfig) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Render = cfg
	}
}

// WithPipelineColor enables or disables colors and sets the palette.
func WithPipelineColor(enabled bool, palette colorize.Palette) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Color = enabled
		c.Palette = palette
	}
}

// WithPipelineSaver adds a save step that stores each run.
func WithPipelineSaver(saver RunSaver) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Saver = saver
	}
}

// WithPipelineLogger sets the logger for the pipeline and its steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline assembles Fetch, Extract, Tokenize, Aggregate, Render
// and Colorize, followed by Save when a saver is configured. Extract is
// left out when script extraction is disabled, and Colorize when colors are.
func DefaultPipeline(fetcher fetch.Fetcher, opts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		Lexer:          lexer.NameJavaScript,
		ExtractScripts: true,
		MaxScripts:     DefaultMaxScripts,
		Render:         model.DefaultRenderConfig(),
		Color:          true,
		Palette:        colorize.DefaultPalette(),
		Logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	p := New(WithLogger(cfg.Logger))
	p.AddStep(NewFetchStep(fetcher, WithFetchLogger(cfg.Logger)))
	if cfg.ExtractScripts {
		p.AddStep(NewExtractStep(fetcher,
			WithFollowScripts(cfg.FollowScripts),
			WithMaxScripts(cfg.MaxScripts),
			WithExtractLogger(cfg.Logger),
		))
	}
	p.AddSteps(
		NewTokenizeStep(
			WithLexer(cfg.Lexer, lexer.WithComments(cfg.Comments)),
			WithTokenizeLogger(cfg.Logger),
		),
		NewAggregateStep(),
		NewRenderStep(histogram.NewASCIIRenderer(), cfg.Render),
	)
	if cfg.Color {
		p.AddStep(NewColorizeStep(cfg.Palette))
	}
	if cfg.Saver != nil {
		p.AddStep(NewSaveStep(cfg.Saver))
	}
	return p
}
