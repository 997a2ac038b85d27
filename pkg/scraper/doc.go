// Package scraper drives the review collection state machine.
//
// A run walks the opaque-cursor appreviews API page by page, accumulates
// reviews in memory, and persists recovery state at a fixed page interval:
// the dataset artifact is written first, the checkpoint second, so a crash
// between the two leaves a checkpoint that understates, never overstates,
// what is on disk.
//
// Failures are never retried inside a run. Every transport or API error is
// classified, checkpointed, and surfaced as a Failed-Recoverable terminal
// state; the operator resumes with an explicit follow-up invocation.
// Cancellation is polled at the top of each loop iteration, so an in-flight
// request completes before the run stops.
package scraper
