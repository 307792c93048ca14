// Package file loads harvest run configurations from the local filesystem.
//
// A run file is TOML or YAML, chosen by extension. Nested tables are
// flattened to dotted keys so that
//
//	[basic]
//	username = "bot"
//
// becomes the parameter "basic.username". Arrays become newline-separated
// values, numbers and booleans are rendered as text.
package file
