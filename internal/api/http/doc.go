// Package http provides the REST handlers for session inspection and
// control.
//
// Routes:
//   - GET    /                    service identity
//   - GET    /health              liveness and session count
//   - GET    /shells              shell catalog
//   - GET    /sessions            live sessions in open order
//   - GET    /sessions/:id        one session
//   - POST   /sessions/:id/input  {"data": "..."} forwarded to the PTY
//   - DELETE /sessions/:id        close a session
//
// Sessions are opened over the stream endpoint, which owns their output.
// Errors come back as {"error": "...", "code": "..."}.
package http
