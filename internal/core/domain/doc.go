// Package domain defines the core entities of a harvest run.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source and RunSettings: a configured harvest target and its typed options
//   - Credentials and ClientConfig: how a service home is reached
//   - PageRequest and PageResult: one page of a listing
//   - Item and Comment: what a service yields
//   - StatsKey and FailureRecord: per-item observability
//   - ConfigError, ParseError, ExtractionError, EvaluationError: typed failures
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
