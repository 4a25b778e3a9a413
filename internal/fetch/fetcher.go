package fetch

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/tokhist/internal/model"
	"github.com/nao1215/tokhist/internal/tor"
)

// Defaults for HTTPFetcher.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 10 * 1024 * 1024
	DefaultUserAgent   = "tokhist"
)

// Fetcher retrieves a document by URL.
type Fetcher interface {
	// Fetch performs a single request for rawURL. It blocks until the
	// whole body has been read or ctx is done. Failures are *NetworkError.
	Fetch(ctx context.Context, rawURL string) (*model.Response, error)
}

// HTTPFetcher fetches documents over HTTP(S).
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	headers     map[string]string
	cookie      string
	charset     string
	viaTor      bool
	logger      *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize limits the number of body bytes read.
// A non-positive n keeps DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithCookie sets a raw Cookie header value, e.g. "session=abc".
func WithCookie(cookie string) Option {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithCharset forces the body charset, ignoring the Content-Type header.
func WithCharset(name string) Option {
	return func(f *HTTPFetcher) {
		f.charset = name
	}
}

// WithTor marks the client as routed through Tor, which permits .onion URLs.
func WithTor(enabled bool) Option {
	return func(f *HTTPFetcher) {
		f.viaTor = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a fetcher using client. A nil client gets a
// direct client with DefaultTimeout.
func NewHTTPFetcher(client *http.Client, opts ...Option) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one GET for rawURL. Non-2xx statuses, transport failures
// and oversized bodies are returned as *NetworkError. There are no retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.Response, error) {
	if err := f.checkURL(rawURL); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/javascript, text/javascript, text/html;q=0.9, */*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	f.logger.Debug("fetching", "url", rawURL)
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("unexpected status", "url", rawURL, "status", resp.StatusCode)
		return nil, &NetworkError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(raw)) > f.maxBodySize {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, f.maxBodySize)}
	}

	contentType := resp.Header.Get("Content-Type")
	body, charsetName, err := decodeBody(raw, contentType, f.charset)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	sum := sha3.Sum256(raw)
	out := &model.Response{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Charset:     charsetName,
		Body:        body,
		Size:        len(raw),
		Hash:        hex.EncodeToString(sum[:]),
		FetchedAt:   time.Now(),
	}

	f.logger.Debug("fetched",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"charset", charsetName,
		"duration", time.Since(start),
	)
	return out, nil
}

// checkURL accepts absolute http(s) URLs. .onion hosts must be valid v3
// addresses and need a Tor-routed client.
func (f *HTTPFetcher) checkURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https: %q", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host: %q", ErrInvalidURL, rawURL)
	}
	if tor.IsOnionHost(u.Hostname()) {
		if !f.viaTor {
			return ErrOnionRequiresTor
		}
		if err := tor.ValidateOnionHost(u.Hostname()); err != nil {
			return errors.Join(ErrInvalidURL, err)
		}
	}
	return nil
}
