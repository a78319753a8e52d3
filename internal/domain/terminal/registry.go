package terminal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"go.uber.org/zap"
)

// DefaultCloseTimeout bounds how long Close waits for a pump to stop.
const DefaultCloseTimeout = 3 * time.Second

// RegistryOptions tunes a Registry.
type RegistryOptions struct {
	MaxSessions  int // 0 means unlimited
	CloseTimeout time.Duration
}

// Registry tracks live sessions. mu guards the map and the reservation
// count only; no backend I/O happens while it is held.
type Registry struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*entry // Protected by mu
	pending  int                     // Protected by mu

	spawn   SpawnFunc
	opts    RegistryOptions
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

type entry struct {
	info    Info
	backend Backend
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRegistry creates a registry that builds backends with spawn.
func NewRegistry(spawn SpawnFunc, opts RegistryOptions) *Registry {
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = DefaultCloseTimeout
	}
	return &Registry{
		sessions: make(map[id.SessionID]*entry),
		spawn:    spawn,
		opts:     opts,
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the registry logger.
func (r *Registry) WithLogger(logger *zap.Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithMetrics adds metrics tracking to the registry.
func (r *Registry) WithMetrics(metrics *monitoring.Metrics) *Registry {
	r.metrics = metrics
	return r
}

// Open spawns a backend for desc, registers it and starts its pump. On
// error nothing is registered.
func (r *Registry) Open(desc shell.Descriptor, geom Geometry, sub Subscriber) (id.SessionID, error) {
	if sub == nil {
		sub = Discard
	}
	if err := r.reserve(); err != nil {
		r.metrics.SessionOpenFailed("limit")
		return "", err
	}

	desc = desc.Clone()
	geom = geom.OrDefault(DefaultGeometry)
	backend, err := r.spawn(desc, geom)
	if err != nil {
		r.release()
		r.metrics.SessionOpenFailed("spawn")
		var spawnErr *SpawnError
		if !errors.As(err, &spawnErr) {
			err = &SpawnError{Command: desc.Command, Err: err}
		}
		r.logger.Warn("Session spawn failed", zap.String("command", desc.Command), zap.Error(err))
		return "", err
	}

	info := Info{
		ID:        id.NewSessionID(),
		Kind:      backend.Kind(),
		Name:      desc.DisplayName(),
		Command:   desc.Command,
		Args:      desc.Args,
		Cwd:       desc.Cwd,
		Geometry:  geom,
		CreatedAt: time.Now(),
	}
	if p, ok := backend.(pidder); ok {
		info.Pid = p.Pid()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{
		info:    info,
		backend: backend,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	r.pending--
	r.sessions[info.ID] = e
	r.mu.Unlock()

	r.metrics.SessionOpened()
	r.logger.Info("Session opened",
		zap.String("session_id", info.ID.String()),
		zap.String("command", info.Command),
		zap.Int("pid", info.Pid))

	go r.runPump(ctx, e, sub)
	return info.ID, nil
}

func (r *Registry) reserve() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.MaxSessions > 0 && len(r.sessions)+r.pending >= r.opts.MaxSessions {
		return ErrLimitReached
	}
	r.pending++
	return nil
}

func (r *Registry) release() {
	r.mu.Lock()
	r.pending--
	r.mu.Unlock()
}

func (r *Registry) runPump(ctx context.Context, e *entry, sub Subscriber) {
	defer close(e.done)

	p := &pump{
		id:      e.info.ID,
		backend: e.backend,
		sub:     sub,
		logger:  r.logger.With(zap.String("session_id", e.info.ID.String())),
		metrics: r.metrics,
	}
	end := p.run(ctx)
	r.evict(e, end)
	p.notify(end)
}

// evict removes e if it is still the registered entry for its ID and
// releases its backend.
func (r *Registry) evict(e *entry, end End) {
	r.mu.Lock()
	if cur, ok := r.sessions[e.info.ID]; ok && cur == e {
		delete(r.sessions, e.info.ID)
	}
	r.mu.Unlock()

	e.cancel()
	if err := e.backend.Close(); err != nil {
		r.logger.Debug("Backend close failed", zap.String("session_id", e.info.ID.String()), zap.Error(err))
	}

	lifetime := time.Since(e.info.CreatedAt)
	r.metrics.SessionEnded(string(end.Reason), lifetime)
	r.logger.Info("Session ended",
		zap.String("session_id", e.info.ID.String()),
		zap.String("reason", string(end.Reason)),
		zap.Duration("lifetime", lifetime),
		zap.Error(end.Err))
}

func (r *Registry) lookup(sid id.SessionID) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	return e, ok
}

// Write forwards data to the session's backend.
func (r *Registry) Write(sid id.SessionID, data []byte) error {
	e, ok := r.lookup(sid)
	if !ok {
		return ErrNotFound
	}
	if len(data) == 0 {
		return nil
	}
	if err := e.backend.Write(data); err != nil {
		r.metrics.IncWriteErrors()
		return &WriteError{SessionID: sid, Err: err}
	}
	r.metrics.AddInput(len(data))
	return nil
}

// Close unregisters the session, stops its pump and releases its backend.
// It returns ErrNotFound if the session is not registered.
func (r *Registry) Close(sid id.SessionID) error {
	r.mu.Lock()
	e, ok := r.sessions[sid]
	if ok {
		delete(r.sessions, sid)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.cancel()
	closeErr := e.backend.Close()

	timer := time.NewTimer(r.opts.CloseTimeout)
	defer timer.Stop()
	select {
	case <-e.done:
	case <-timer.C:
		r.logger.Warn("Session pump did not stop in time",
			zap.String("session_id", sid.String()),
			zap.Duration("timeout", r.opts.CloseTimeout))
	}

	if closeErr != nil {
		return fmt.Errorf("close session %s: %w", sid, closeErr)
	}
	return nil
}

// Get returns a snapshot of one session.
func (r *Registry) Get(sid id.SessionID) (Info, bool) {
	e, ok := r.lookup(sid)
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// List returns snapshots of all sessions in open order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e.info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every session concurrently. It returns ctx.Err() if ctx
// ends first; the remaining closes still run to completion.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]id.SessionID, 0, len(r.sessions))
	for sid := range r.sessions {
		ids = append(ids, sid)
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sid := range ids {
		wg.Add(1)
		go func(sid id.SessionID) {
			defer wg.Done()
			if err := r.Close(sid); err != nil && !errors.Is(err, ErrNotFound) {
				r.logger.Warn("Session close failed", zap.String("session_id", sid.String()), zap.Error(err))
			}
		}(sid)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
