// Package server wraps a gin engine with request ids, access logging,
// recovery, CORS, Prometheus metrics and a database health endpoint.
package server
