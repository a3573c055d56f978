// Package health aggregates component readiness checks into a single
// content-free report for the operational health endpoint.
package health
