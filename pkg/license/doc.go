// Package license validates the deployment's entitlement and enforces
// it against request handling.
//
// A license is an offline-verifiable Ed25519-signed key carrying the
// licensee, tier, expiry and analysis quota. The Validator checks the
// key, the expiry and the quota against a durable usage counter; the
// Watchdog re-runs that check on a fixed interval and on every inbound
// request, publishing the result as a single atomically-swapped status
// value.
//
// Enforcement has two modes: "degrade" logs and keeps serving,
// "stop" rejects requests with a policy error while the license is
// invalid and resumes automatically once a later check passes.
package license
