// Package log builds the tokhist slog logger.
//
// SecureHandler wraps any slog.Handler and masks values that should not
// reach a terminal or a shared log file:
//   - request headers and config values such as Authorization and Cookie
//   - token-like strings (JWTs, bearer and basic credentials, API keys)
//   - passwords and sensitive query parameters inside URLs
//
// Hex digests such as the SHA3-256 body hash are left readable.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
// The same logger is handed to tornago when the embedded Tor daemon runs.
package log
