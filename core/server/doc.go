// Package server holds the HTTP server configuration.
//
// While cmd/start.go builds and runs the Fiber application, this package defines the
// settings it reads: listen port, the API key guarding the integrity endpoints, and
// the request body limit that bounds uploaded files.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings.
package server
