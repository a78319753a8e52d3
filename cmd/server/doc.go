// Package main is the entry point for the termhost server.
//
// termhost runs interactive shells behind pseudo-terminals and streams
// them to browser terminals over WebSocket.
//
// Architecture:
//
//	Browser terminal ⇄ /stream (WebSocket) ⇄ Session Manager ⇄ PTY ⇄ shell
//	                   REST (/sessions, /shells, /metrics)
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -host 0.0.0.0
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
//	# Extra shells from a catalog file
//	./server -catalog shells.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown (all sessions are closed)
package main
