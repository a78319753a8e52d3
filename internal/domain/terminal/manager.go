package terminal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"go.uber.org/zap"
)

// Options configures a Manager.
type Options struct {
	Geometry       Geometry // applied to zero dimensions on open
	ReadBufferSize int
	MaxSessions    int
	CloseTimeout   time.Duration
	Spawn          SpawnFunc // defaults to LocalSpawner(ReadBufferSize)
}

// Manager is the process-wide entry point for terminal sessions.
type Manager struct {
	mu       sync.RWMutex
	closed   bool // Protected by mu
	registry *Registry
	geometry Geometry
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a manager. logger and metrics may be nil.
func NewManager(opts Options, logger *zap.Logger, metrics *monitoring.Metrics) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	spawn := opts.Spawn
	if spawn == nil {
		spawn = LocalSpawner(opts.ReadBufferSize)
	}
	registry := NewRegistry(spawn, RegistryOptions{
		MaxSessions:  opts.MaxSessions,
		CloseTimeout: opts.CloseTimeout,
	}).WithLogger(logger).WithMetrics(metrics)

	return &Manager{
		registry: registry,
		geometry: opts.Geometry.OrDefault(DefaultGeometry),
		logger:   logger,
		metrics:  metrics,
	}
}

// OpenLocalSession starts desc behind a PTY and streams its output to sub.
func (m *Manager) OpenLocalSession(ctx context.Context, desc shell.Descriptor, geom Geometry, sub Subscriber) (id.SessionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrShuttingDown
	}
	return m.registry.Open(desc, geom.OrDefault(m.geometry), sub)
}

// OpenRemoteSession is declared for network-backed sessions, which have no
// transport yet. It always fails with ErrUnsupported and registers nothing.
func (m *Manager) OpenRemoteSession(ctx context.Context, host HostInfo, sub Subscriber) (id.SessionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.metrics.SessionOpenFailed("unsupported")
	m.logger.Debug("Remote session requested", zap.String("address", host.Address()))
	return "", ErrUnsupported
}

// Write forwards input to a session.
func (m *Manager) Write(sid id.SessionID, data []byte) error {
	return m.registry.Write(sid, data)
}

// Close ends a session. Closing an unknown or already closed session is
// not an error.
func (m *Manager) Close(sid id.SessionID) error {
	if err := m.registry.Close(sid); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Get returns a snapshot of one session.
func (m *Manager) Get(sid id.SessionID) (Info, bool) {
	return m.registry.Get(sid)
}

// List returns snapshots of all live sessions in open order.
func (m *Manager) List() []Info {
	return m.registry.List()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.registry.Len()
}

// Geometry returns the default terminal size.
func (m *Manager) Geometry() Geometry {
	return m.geometry
}

// Shutdown refuses new sessions and closes all live ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	n := m.registry.Len()
	if n > 0 {
		m.logger.Info("Closing sessions", zap.Int("count", n))
	}
	return m.registry.CloseAll(ctx)
}
