// Package handlers implements the API endpoints: analyze, feedback,
// and the operational read surface (root, health, stats, license
// status, metrics snapshot).
package handlers
