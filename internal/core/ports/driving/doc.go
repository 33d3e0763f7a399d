// Package driving provides interfaces consumed by user-facing adapters
// (primary/inbound ports): the CLI and the chat TUI drive the pipeline
// through these.
package driving
