// Package html provides a TextExtractor for rendered item and comment
// bodies. It extracts readable text from HTML, dropping scripts, styles and
// markup, and passes plain text through with whitespace normalised.
package html
