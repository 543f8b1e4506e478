// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Middlewares:
//   - CORS: sets CORS headers for a configured origin and answers preflight requests.
//   - WithLogger: attaches a request-scoped logger and request ID, then writes an access log.
//
// Helpers:
//   - Pprof: serves net/http/pprof under a path prefix.
package controller
