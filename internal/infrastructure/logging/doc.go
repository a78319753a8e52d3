// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// Subsystems take a *zap.Logger obtained from Component so every line carries
// the emitting subsystem's name (terminal, stream, http).
//
// Example Usage:
//
//	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
//	log := logger.Component("terminal")
//	log.Info("session opened", zap.String("session_id", id.String()))
package logging
