package model

import "errors"

// Render configuration errors returned by RenderConfig.Validate.
var (
	// ErrInvalidWidth is returned when MaxWidth is not positive.
	ErrInvalidWidth = errors.New("invalid histogram width: must be positive")

	// ErrInvalidBarChar is returned when the bar character is a letter, digit,
	// whitespace or control character. Such characters would be picked up by
	// the colorizer's number and word passes or make bars invisible.
	ErrInvalidBarChar = errors.New("invalid bar character: must not be a letter, digit, whitespace or control character")
)
