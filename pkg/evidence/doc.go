// Package evidence defines the content-free audit data model: analysis
// events, schema-versioned evidence records, feedback events, and the
// storage interface that persistence backends implement.
//
// The package enforces one guarantee above all others: no raw text and no
// content-derived fragment ever appears in persisted state. Text is only
// ever represented as a one-way fingerprint (hash + length), and every
// record passes through the recursive scrubber in the scrub subpackage
// before it reaches a backend.
//
// Subpackages:
//
//   - scrub: the recursive sanitizer enforcing the no-content invariant
//   - recorder: fingerprinting, record building, and async persistence
//   - storage: memory, SQLite, JSONL, GitHub contents-API, and git mirror
//     backends
package evidence
