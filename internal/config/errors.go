package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when there is no URL to fetch.
	ErrNoTarget = errors.New("no target specified: provide at least one URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingTransports is returned when both --proxy and --tor are set.
	ErrConflictingTransports = errors.New("conflicting transports: --proxy and --tor cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidWidth is returned when the bar width is not positive.
	ErrInvalidWidth = errors.New("invalid width: must be positive")

	// ErrInvalidBarChar is returned when the bar is not a single printable,
	// non-alphanumeric character.
	ErrInvalidBarChar = errors.New("invalid bar character: must be a single printable non-alphanumeric character")

	// ErrInvalidMaxScripts is returned when the external script limit is negative.
	ErrInvalidMaxScripts = errors.New("invalid max scripts: must be non-negative")
)
