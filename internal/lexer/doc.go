// Package lexer splits source text into categorized tokens.
//
// Two tokenizers are provided:
//   - JavaScript: a strict ECMAScript tokenizer. The input must parse as a
//     complete program; tokens are labeled with the esprima token types
//     (Boolean, Identifier, Keyword, Null, Numeric, Punctuator, String,
//     RegularExpression, Template).
//   - Chroma: a best-effort tokenizer for any language chroma knows,
//     labeled with chroma token categories (Keyword, Name, Operator, ...).
//
// Lookup selects a tokenizer by name, or by Content-Type and content when
// the name is "auto".
package lexer
