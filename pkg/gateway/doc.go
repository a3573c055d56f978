// Package gateway defines the public API surface: request/response
// types, the endpoint handlers and the HTTP middleware chain.
//
// Responses may echo the caller's own text back; everything the
// service persists about a request goes through the evidence pipeline
// and is content-free.
package gateway
