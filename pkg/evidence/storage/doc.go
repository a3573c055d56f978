// Package storage provides persistence backends for audit events.
//
// Backends:
//
//   - MemoryStorage: bounded in-memory ring plus cumulative counters; the
//     default backend and the source of truth for the stats endpoint.
//   - SQLiteStorage: durable local archive of scrubbed events.
//   - JSONLStorage: day-bucketed append-only log files, doubling as the
//     working tree for the git mirror.
//   - GitHubStorage: one immutable object per event via the GitHub
//     contents API; best-effort remote copy.
//   - GitMirror: clone/pull on startup, debounced commit-and-push of the
//     JSONL log directory.
//
// All backends receive records after scrubbing; none of them inspects or
// transforms content.
package storage
