// Package model defines the core data structures used throughout tokhist.
//
// This package contains the following main types:
//   - Token: A lexical unit tagged with a category label
//   - Histogram: Token counts per category, kept in first-seen order
//   - RenderConfig and RenderedText: Input and output of the histogram renderer
//   - Run: The result of one pipeline execution for a single URL
//
// Models live in their own package because the fetch, lexer, histogram,
// pipeline, report and database packages all exchange them.
//
// Run, Histogram and Response serialize to JSON for report output and
// history storage.
package model
