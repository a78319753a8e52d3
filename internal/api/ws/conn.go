package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errConnClosed = errors.New("stream connection closed")

// conn is one client connection. The reader runs on the handler
// goroutine; a single writer goroutine owns all writes to the socket.
type conn struct {
	id     string
	ws     *websocket.Conn
	h      *Handler
	logger *zap.Logger

	send     chan []byte
	done     chan struct{}
	doneOnce sync.Once

	mu    sync.Mutex
	owned map[id.SessionID]struct{} // Protected by mu
}

func newConn(connID string, ws *websocket.Conn, h *Handler) *conn {
	return &conn{
		id:     connID,
		ws:     ws,
		h:      h,
		logger: h.logger.With(zap.String("conn_id", connID)),
		send:   make(chan []byte, h.opts.SendBuffer),
		done:   make(chan struct{}),
		owned:  make(map[id.SessionID]struct{}),
	}
}

func (c *conn) serve() {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop()
	}()

	c.readLoop()

	c.shutdown()
	c.closeOwned()
	<-writerDone
	_ = c.ws.Close()
}

func (c *conn) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

// closeOwned ends every session this connection opened.
func (c *conn) closeOwned() {
	c.mu.Lock()
	ids := make([]id.SessionID, 0, len(c.owned))
	for sid := range c.owned {
		ids = append(ids, sid)
	}
	c.owned = make(map[id.SessionID]struct{})
	c.mu.Unlock()

	for _, sid := range ids {
		if err := c.h.sessions.Close(sid); err != nil {
			c.logger.Warn("Failed to close session", zap.String("session_id", sid.String()), zap.Error(err))
		}
	}
	if len(ids) > 0 {
		c.logger.Info("Closed sessions on disconnect", zap.Int("count", len(ids)))
	}
}

func (c *conn) readLoop() {
	c.ws.SetReadLimit(c.h.opts.MaxMessageBytes)
	deadline := 2 * c.h.opts.PingInterval
	_ = c.ws.SetReadDeadline(time.Now().Add(deadline))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("Stream read error", zap.Error(err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(deadline))

		frame, err := decodeFrame(data)
		if err != nil {
			c.reply(errorFrame("", "", CodeBadRequest, "malformed frame: "+err.Error()))
			continue
		}
		c.h.metrics.RecordWSFrame(frameLabel(frame.Type), "in")
		c.dispatch(frame)
	}
}

func (c *conn) writeLoop() {
	ticker := time.NewTicker(c.h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("Stream write failed", zap.Error(err))
				c.shutdown()
				_ = c.ws.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				_ = c.ws.Close()
				return
			}
		case <-c.done:
			// Closing the socket also unblocks a reader still waiting on
			// the client.
			_ = c.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = c.ws.Close()
			return
		}
	}
}

func (c *conn) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.h.opts.WriteTimeout))
	return c.ws.WriteMessage(messageType, data)
}

// enqueue hands a frame to the writer, blocking while the queue is full.
func (c *conn) enqueue(ctx context.Context, frameType string, v any) error {
	data, err := encodeFrame(v)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		c.h.metrics.RecordWSFrame(frameType, "out")
		return nil
	case <-c.done:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *conn) reply(v any) {
	frameType := TypeError
	switch f := v.(type) {
	case OpenedFrame:
		frameType = f.Type
	case SessionsFrame:
		frameType = f.Type
	case ShellsFrame:
		frameType = f.Type
	case PongFrame:
		frameType = f.Type
	}
	if err := c.enqueue(context.Background(), frameType, v); err != nil && !errors.Is(err, errConnClosed) {
		c.logger.Warn("Failed to queue reply", zap.Error(err))
	}
}

func (c *conn) replyError(f ClientFrame, err error) {
	c.reply(errorFrame(f.RequestID, f.SessionID, terminal.ErrorCode(err), err.Error()))
}

func (c *conn) dispatch(f ClientFrame) {
	switch f.Type {
	case TypeOpen:
		c.handleOpen(f)
	case TypeInput:
		c.handleInput(f)
	case TypeClose:
		c.handleClose(f)
	case TypeList:
		c.reply(SessionsFrame{Type: TypeSessions, RequestID: f.RequestID, Sessions: c.h.sessions.List()})
	case TypeShells:
		c.reply(ShellsFrame{Type: TypeShells, RequestID: f.RequestID, Shells: c.h.catalog.Shells()})
	case TypePing:
		c.reply(PongFrame{Type: TypePong, RequestID: f.RequestID})
	default:
		c.reply(errorFrame(f.RequestID, "", CodeUnknown, "unknown message type: "+f.Type))
	}
}

func (c *conn) handleOpen(f ClientFrame) {
	sub := &sessionSub{conn: c, ready: make(chan struct{})}
	ctx := context.Background()

	var (
		sid id.SessionID
		err error
	)
	if f.Remote != nil {
		sid, err = c.h.sessions.OpenRemoteSession(ctx, *f.Remote, sub)
	} else {
		desc, ok := c.h.resolve(f)
		if !ok {
			c.reply(errorFrame(f.RequestID, "", CodeBadRequest, "unknown shell: "+f.Shell))
			return
		}
		geom := terminal.Geometry{Rows: f.Rows, Cols: f.Cols}
		sid, err = c.h.sessions.OpenLocalSession(ctx, desc, geom, sub)
	}
	if err != nil {
		c.replyError(f, err)
		return
	}

	c.own(sub, sid)

	info, _ := c.h.sessions.Get(sid)
	if info.ID == "" {
		info.ID = sid
	}
	c.reply(OpenedFrame{Type: TypeOpened, RequestID: f.RequestID, Session: info})
	close(sub.ready)
	c.logger.Info("Session attached", zap.String("session_id", sid.String()))
}

func (c *conn) handleInput(f ClientFrame) {
	sid, err := id.ParseSessionID(f.SessionID)
	if err != nil {
		c.reply(errorFrame(f.RequestID, f.SessionID, CodeBadRequest, err.Error()))
		return
	}
	if err := c.h.sessions.Write(sid, []byte(f.Data)); err != nil {
		c.replyError(f, err)
	}
}

func (c *conn) handleClose(f ClientFrame) {
	sid, err := id.ParseSessionID(f.SessionID)
	if err != nil {
		c.reply(errorFrame(f.RequestID, f.SessionID, CodeBadRequest, err.Error()))
		return
	}
	if err := c.h.sessions.Close(sid); err != nil {
		c.replyError(f, err)
	}
}

// frameLabel bounds the metric label set to known client frame types.
func frameLabel(frameType string) string {
	switch frameType {
	case TypeOpen, TypeInput, TypeClose, TypeList, TypeShells, TypePing:
		return frameType
	default:
		return "unknown"
	}
}

// own records sid as opened by this connection unless it already ended.
func (c *conn) own(sub *sessionSub, sid id.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !sub.ended {
		c.owned[sid] = struct{}{}
	}
}

func (c *conn) forget(sub *sessionSub, sid id.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub.ended = true
	delete(c.owned, sid)
}

// sessionSub routes one session's output to its connection. Nothing is
// delivered until the opened frame has been queued.
type sessionSub struct {
	conn  *conn
	ready chan struct{}
	ended bool // Protected by conn.mu
}

func (s *sessionSub) wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-s.conn.done:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *sessionSub) Deliver(ctx context.Context, chunk terminal.Chunk) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	return s.conn.enqueue(ctx, TypeOutput, outputFrame(chunk))
}

func (s *sessionSub) Ended(ctx context.Context, end terminal.End) {
	s.conn.forget(s, end.SessionID)
	if err := s.wait(ctx); err != nil {
		return
	}
	_ = s.conn.enqueue(ctx, TypeExit, exitFrame(end))
}
