// Package terminal hosts interactive shell sessions behind pseudo-terminals.
//
// Components:
//   - Backend: the live resources of one session. LocalPty runs a process
//     behind a PTY; RemoteShell is the declared network variant and answers
//     every call with ErrUnsupported.
//   - Decoder: keeps UTF-8 sequences whole across arbitrary read boundaries.
//   - pump: one goroutine per session draining the backend into a Subscriber.
//   - Registry: the table of live sessions. Its lock covers map access only;
//     backend I/O happens outside it, and each backend synchronizes its own
//     input and output handles independently.
//   - Manager: the process-wide facade (open, write, close, list, shutdown).
//
// Lifecycle:
//
//	Open → spawn backend → register → start pump → return SessionID
//	Write → lookup → backend.Write
//	process exit / read error → pump ends → Ended(exited|failed) → evicted
//	Close → unregister → cancel pump, close backend → Ended(closed)
//
// Output delivery blocks when the subscriber is slow, so a fast producer is
// throttled by its consumer instead of growing an unbounded buffer.
package terminal
