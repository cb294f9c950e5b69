// Package workflow runs multi-stage document workflows and records their
// executions.
//
// The Orchestrator composes the ingestion pipeline, the search engine, and
// the AI analyzer into two workflows:
//   - Document processing: ingest, wait, analyze, notify
//   - Search and analyze: search, extract insights, notify
//
// Every run is persisted as a WorkflowExecution with its output or error.
// Notifications and other side effects go through the ActionDispatcher,
// which records each action and delivers it asynchronously. Action failure
// is audited but never fails the workflow that triggered it.
package workflow
