/*
Package monitoring provides Prometheus metrics for the terminal host.

# Overview

Each Metrics value owns a private registry, so several collectors can coexist
in one process (tests construct many). All recording methods tolerate a nil
*Metrics.

# Metrics

  - HTTP request count and latency, labelled by route template
  - Session lifecycle: active, opened, open failures, ended by reason, lifetime
  - Byte flow: input written to backends, output delivered to subscribers
  - Decode and write errors
  - Stream connections and frames

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
