// Package services implements the driving port interfaces.
// Services contain the core harvest logic and orchestrate
// calls to driven ports (adapters).
//
// HarvestPipeline runs one harvest on a bounded worker Pool, classifies
// per-item failures by root cause and reports lifecycle transitions to a
// StatsRecorder such as CrawlStats.
package services
