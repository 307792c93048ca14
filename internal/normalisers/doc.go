// Package normalisers holds the text extractors that turn service bodies
// into plain text for field evaluation. Each extractor lives in its own
// subpackage and implements driven.TextExtractor.
package normalisers
