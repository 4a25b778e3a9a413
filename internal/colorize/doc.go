// Package colorize adds ANSI terminal colors to a rendered histogram.
//
// Three kinds of text are highlighted: runs of digits (the counts), runs of
// two or more letters (the category labels) and bar characters. Everything
// else, including spaces and single letters, passes through unchanged.
//
// Color codes are always emitted; callers that write to a non-terminal
// decide whether to colorize at all.
package colorize
