// Package main provides the entry point for the tokhist CLI.
//
// tokhist downloads a script, splits it into tokens and prints a colorized
// ASCII histogram of the token categories.
//
// Usage:
//
//	tokhist                      # histogram of jQuery 2.1.4
//	tokhist run <url> [url...]
//	tokhist compare <url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
