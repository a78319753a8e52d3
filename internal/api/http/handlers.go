package http

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// maxInputBytes caps a single REST input request.
const maxInputBytes = 64 << 10

// Sessions is the subset of terminal.Manager the handlers use.
type Sessions interface {
	Write(sid id.SessionID, data []byte) error
	Close(sid id.SessionID) error
	Get(sid id.SessionID) (terminal.Info, bool)
	List() []terminal.Info
	Len() int
}

// Shells lists launchable shells.
type Shells interface {
	Shells() []shell.Descriptor
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions Sessions
	shells   Shells
	logger   *zap.Logger
	started  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(sessions Sessions, shells Shells, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		sessions: sessions,
		shells:   shells,
		logger:   logger,
		started:  time.Now(),
	}
}

// Register mounts the REST routes on r.
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/shells", h.ListShells)
	r.GET("/sessions", h.ListSessions)
	r.GET("/sessions/:id", h.GetSession)
	r.POST("/sessions/:id/input", h.WriteInput)
	r.DELETE("/sessions/:id", h.CloseSession)
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "termhost",
		"version": Version,
	})
}

// Health reports liveness and session count
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.sessions.Len(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// ListShells returns the shell catalog
func (h *Handlers) ListShells(c *gin.Context) {
	shells := h.shells.Shells()
	c.JSON(http.StatusOK, gin.H{
		"shells": shells,
		"count":  len(shells),
	})
}

// ListSessions lists live sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession returns one session
func (h *Handlers) GetSession(c *gin.Context) {
	sid, ok := sessionParam(c)
	if !ok {
		return
	}
	info, found := h.sessions.Get(sid)
	if !found {
		respondError(c, terminal.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, info)
}

// InputRequest is the body of POST /sessions/:id/input.
type InputRequest struct {
	Data string `json:"data" binding:"required"`
}

// WriteInput forwards keystrokes to a session
func (h *Handlers) WriteInput(c *gin.Context) {
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxInputBytes)
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}

	if err := h.sessions.Write(sid, []byte(req.Data)); err != nil {
		h.logger.Debug("Input rejected", zap.String("session_id", sid.String()), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sid,
		"bytes":      len(req.Data),
	})
}

// CloseSession ends a session. Closing an unknown or already closed
// session succeeds.
func (h *Handlers) CloseSession(c *gin.Context) {
	sid, ok := sessionParam(c)
	if !ok {
		return
	}
	if err := h.sessions.Close(sid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sid,
	})
}

func sessionParam(c *gin.Context) (id.SessionID, bool) {
	sid, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return "", false
	}
	return sid, true
}
