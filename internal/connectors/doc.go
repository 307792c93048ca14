// Package connectors turns a source's flat parameter map into typed run
// settings and builds the ItemSource for the configured service.
//
// Service-specific clients live in the wiki and tracker subpackages; the
// shared HTTP, signing and pagination machinery lives in rest.
package connectors
