// Package ws provides the WebSocket stream endpoint for interactive
// terminal sessions.
//
// A connection subscribes to the sessions it opens: their output arrives as
// output frames in order, followed by one exit frame. Closing the
// connection closes those sessions. Frames are JSON objects keyed by
// "type" and encoded with sonic.
//
// Message Types (Client → Server):
//   - open: {shell | command, args, env, cwd, rows, cols} or {remote}
//   - input: {session_id, data}
//   - close: {session_id}
//   - list, shells, ping
//
// Message Types (Server → Client):
//   - opened: {session}
//   - output: {session_id, seq, data, raw?}
//   - exit: {session_id, reason, error?}
//   - sessions, shells, pong
//   - error: {code, message}
//
// Any client frame may carry a request_id, echoed on its direct reply.
//
// Each connection has one writer goroutine fed by a bounded queue. A
// session whose client cannot keep up blocks in delivery until the queue
// drains.
//
// Example Usage:
//
//	handler := ws.NewHandler(manager, catalog, ws.DefaultOptions(), logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
