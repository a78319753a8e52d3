// Package config provides 12-factor configuration for the terminal host.
//
// Configuration is loaded from environment variables with defaults; the
// server binary lets CLI flags override the environment.
//
// Configuration Sections:
//   - Server: listen address and shutdown grace period
//   - Terminal: default geometry, read buffer, session cap, close timeout
//   - Shells: /etc/shells location, extra catalog file, exclusions
//   - Stream: WebSocket send queue and frame limits
//   - Logging: level and output format
//   - RateLimit, CORS: REST API guards
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - TERM_ROWS, TERM_COLS, TERM_READ_BUFFER, TERM_MAX_SESSIONS, TERM_CLOSE_TIMEOUT
//   - SHELLS_FILE, SHELL_CATALOG, SHELL_INCLUDE_LOGIN, SHELL_EXCLUDE, SHELL_TERM
//   - WS_SEND_BUFFER, WS_MAX_MESSAGE, WS_ALLOWED_ORIGINS
//   - LOG_LEVEL, LOG_DEV, RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, CORS_ORIGINS
package config
