// Package report writes finished runs.
//
//   - TextWriter: the histogram as printed on a terminal
//   - JSONWriter: the run as JSON for other tools
//   - MarkdownWriter: a table and a mermaid pie chart for documents
//
// Writers implement the Writer interface and can be combined with MultiWriter.
package report
