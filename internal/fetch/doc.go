// Package fetch downloads the documents tokhist analyzes.
//
// HTTPFetcher issues exactly one GET per call and never retries. Every
// failure, whether in transport or a non-2xx status, is reported as a
// *NetworkError. Successful bodies are decoded to UTF-8 from the charset
// named by the Content-Type header or a per-source override.
//
// ExtractScripts pulls the JavaScript out of an HTML page so the tokenizer
// sees only script text.
package fetch
