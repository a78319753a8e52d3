package ws

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/GriffinCanCode/termhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Sessions is the subset of terminal.Manager the stream uses.
type Sessions interface {
	OpenLocalSession(ctx context.Context, desc shell.Descriptor, geom terminal.Geometry, sub terminal.Subscriber) (id.SessionID, error)
	OpenRemoteSession(ctx context.Context, host terminal.HostInfo, sub terminal.Subscriber) (id.SessionID, error)
	Write(sid id.SessionID, data []byte) error
	Close(sid id.SessionID) error
	Get(sid id.SessionID) (terminal.Info, bool)
	List() []terminal.Info
}

// Catalog resolves shell names.
type Catalog interface {
	Shells() []shell.Descriptor
	Lookup(name string) (shell.Descriptor, bool)
}

// Options tunes the stream endpoint.
type Options struct {
	SendBuffer      int   // queued outbound frames per connection
	MaxMessageBytes int64 // inbound frame limit
	AllowedOrigins  []string
	PingInterval    time.Duration
	WriteTimeout    time.Duration
}

// DefaultOptions returns the stream defaults.
func DefaultOptions() Options {
	return Options{
		SendBuffer:      256,
		MaxMessageBytes: 1 << 20,
		PingInterval:    30 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

// Handler manages WebSocket connections
type Handler struct {
	sessions Sessions
	catalog  Catalog
	opts     Options
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	mu    sync.Mutex
	conns map[*conn]struct{} // Protected by mu
	wg    sync.WaitGroup
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions Sessions, catalog Catalog, opts Options, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	def := DefaultOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = def.MaxMessageBytes
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = def.PingInterval
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handler{
		sessions: sessions,
		catalog:  catalog,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		conns:    make(map[*conn]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients). Browsers must match AllowedOrigins, or the request host when
// none are configured.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.opts.AllowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.wg.Add(1)
	defer h.wg.Done()

	conn := newConn(uuid.NewString(), wsConn, h)
	h.track(conn, true)
	defer h.track(conn, false)
	h.metrics.WSConnected(1)
	defer h.metrics.WSConnected(-1)

	conn.logger.Info("Stream connected", zap.String("remote", c.ClientIP()))
	conn.serve()
	conn.logger.Info("Stream disconnected")
}

func (h *Handler) track(c *conn, add bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if add {
		h.conns[c] = struct{}{}
	} else {
		delete(h.conns, c)
	}
}

// Shutdown asks every connection to close and waits for them. Connections
// still open when ctx ends are dropped.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.shutdown()
	}
	if err := h.Wait(ctx); err != nil {
		for _, c := range conns {
			_ = c.ws.Close()
		}
		return err
	}
	return nil
}

// Wait blocks until every connection has been torn down or ctx ends.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolve builds the descriptor for an open frame: an explicit command,
// a catalog shell by name, or the default shell.
func (h *Handler) resolve(f ClientFrame) (shell.Descriptor, bool) {
	var desc shell.Descriptor
	switch {
	case f.Command != "":
		desc = shell.Descriptor{Name: f.Shell, Command: f.Command, Args: f.Args}
	case f.Shell != "":
		found, ok := h.catalog.Lookup(f.Shell)
		if !ok {
			return shell.Descriptor{}, false
		}
		desc = found.Clone()
	default:
		desc = h.defaultShell()
	}
	desc.Env = append(desc.Env, f.Env...)
	if f.Cwd != "" {
		desc.Cwd = f.Cwd
	}
	return desc, true
}

func (h *Handler) defaultShell() shell.Descriptor {
	if shells := h.catalog.Shells(); len(shells) > 0 {
		return shells[0].Clone()
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return shell.Descriptor{Command: sh}
	}
	return shell.Descriptor{Command: "/bin/sh"}
}
