// Package memory provides in-memory implementations of the document sink and
// failure store, used for dry runs and tests.
package memory
