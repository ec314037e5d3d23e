// Package controller contains HTTP middlewares and handlers for the
// operational endpoints.
//
// Middlewares:
//   - WithLogger: attaches a request ID and logger to the context and logs the request.
//
// Handlers:
//   - Healthz: runs dependency checks and reports them as JSON.
//   - RegisterPprof: mounts net/http/pprof under /debug/pprof/.
package controller
