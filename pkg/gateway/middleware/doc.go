// Package middleware provides the HTTP middleware chain for the API
// server: request ids, panic recovery, request logging and CORS.
package middleware
