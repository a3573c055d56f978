// Package recorder turns decision-engine verdicts into persisted audit
// events: it fingerprints text, builds schema-validated evidence records,
// and writes events to storage from a background worker so request handling
// never blocks on persistence.
package recorder
