// Package queue persists per-item pipeline state in SQLite so batch progress
// and outcomes survive for inspection after a run.
package queue
