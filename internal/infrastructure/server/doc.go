// Package server assembles the terminal host: configuration, logging,
// metrics, the shell catalog, the session manager, and the HTTP router
// with its REST and stream routes.
//
// Shutdown order: stop accepting requests, disconnect streams, close all
// sessions, sync the logger.
package server
