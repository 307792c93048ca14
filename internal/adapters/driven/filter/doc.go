// Package filter provides the regular-expression URLFilter used to decide
// which harvested items are processed.
//
// Patterns use Go regexp syntax and must match the whole URL. Exclude
// patterns are checked first; when include patterns are configured a URL
// must match at least one of them.
package filter
