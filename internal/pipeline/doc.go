// Package pipeline runs the steps that turn a URL into a token histogram.
//
// A run moves through Fetch, Extract, Tokenize, Aggregate, Render and
// Colorize, optionally followed by Save. Each step reads and fills in the
// shared model.Run. The first failing step stops the run, so a failed fetch
// never reaches the tokenizer and a parse error never yields a histogram.
//
// BatchProcessor runs independent pipelines for several URLs concurrently
// with errgroup and returns their results in input order.
package pipeline
