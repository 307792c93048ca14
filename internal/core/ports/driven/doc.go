// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// The harvest pipeline depends on these interfaces, and adapters implement them.
//
// # Required Interfaces
//
//   - ItemSource: Enumerates items and comments from one remote service
//   - TextExtractor: Turns HTML bodies into plain text
//   - URLFilter: Include/exclude decision per item URL
//   - FieldEvaluator: Maps the harvested record into the output document
//   - DocumentSink: Receives finished documents
//   - FailureRecorder: Persists per-item failures
//   - StatsRecorder: Observes per-item lifecycle transitions
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
