// Package http implements the relay's HTTP transport layer.
//
// It exposes route wiring, request handlers, and middleware for the sync
// API. Cross-cutting concerns such as device authentication, request
// tracing, and access logging are handled in this package before requests
// are delegated to the service layer.
package http
