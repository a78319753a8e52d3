package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/GriffinCanCode/termhost/internal/domain/shell"
	"github.com/GriffinCanCode/termhost/internal/domain/terminal"
	"github.com/GriffinCanCode/termhost/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	mu       sync.Mutex
	sessions map[id.SessionID]terminal.Info
	written  map[id.SessionID]string
	writeErr error
}

func newStubSessions(infos ...terminal.Info) *stubSessions {
	s := &stubSessions{
		sessions: make(map[id.SessionID]terminal.Info),
		written:  make(map[id.SessionID]string),
	}
	for _, info := range infos {
		s.sessions[info.ID] = info
	}
	return s
}

func (s *stubSessions) Write(sid id.SessionID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; !ok {
		return terminal.ErrNotFound
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written[sid] += string(data)
	return nil
}

func (s *stubSessions) Close(sid id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *stubSessions) Get(sid id.SessionID) (terminal.Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.sessions[sid]
	return info, ok
}

func (s *stubSessions) List() []terminal.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]terminal.Info, 0, len(s.sessions))
	for _, info := range s.sessions {
		out = append(out, info)
	}
	return out
}

func (s *stubSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type stubShells []shell.Descriptor

func (s stubShells) Shells() []shell.Descriptor { return s }

func setupRouter(sessions Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	shells := stubShells{{Name: "bash", Command: "/bin/bash"}, {Name: "zsh", Command: "/bin/zsh"}}
	NewHandlers(sessions, shells, nil).Register(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func testInfo() terminal.Info {
	return terminal.Info{
		ID:       id.NewSessionID(),
		Kind:     terminal.KindLocalPty,
		Name:     "bash",
		Command:  "/bin/bash",
		Geometry: terminal.DefaultGeometry,
		Pid:      4242,
	}
}

func TestRootAndHealth(t *testing.T) {
	router := setupRouter(newStubSessions(testInfo()))

	w := do(router, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "termhost", decode(t, w)["service"])

	w = do(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["sessions"])
}

func TestListShells(t *testing.T) {
	router := setupRouter(newStubSessions())
	w := do(router, "GET", "/shells", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	shells := body["shells"].([]any)
	assert.Equal(t, "bash", shells[0].(map[string]any)["name"])
}

func TestListAndGetSessions(t *testing.T) {
	info := testInfo()
	router := setupRouter(newStubSessions(info))

	w := do(router, "GET", "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = do(router, "GET", "/sessions/"+info.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, info.ID.String(), body["id"])
	assert.Equal(t, "local_pty", body["kind"])
	assert.Equal(t, float64(4242), body["pid"])
	assert.Equal(t, float64(24), body["geometry"].(map[string]any)["rows"])
}

func TestGetSessionErrors(t *testing.T) {
	router := setupRouter(newStubSessions())

	w := do(router, "GET", "/sessions/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "GET", "/sessions/"+id.NewSessionID().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, terminal.CodeNotFound, decode(t, w)["code"])
}

func TestWriteInput(t *testing.T) {
	info := testInfo()
	sessions := newStubSessions(info)
	router := setupRouter(sessions)

	w := do(router, "POST", "/sessions/"+info.ID.String()+"/input", `{"data":"ls -la\n"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), decode(t, w)["bytes"])
	assert.Equal(t, "ls -la\n", sessions.written[info.ID])
}

func TestWriteInputErrors(t *testing.T) {
	info := testInfo()
	sessions := newStubSessions(info)
	router := setupRouter(sessions)
	path := "/sessions/" + info.ID.String() + "/input"

	w := do(router, "POST", path, `{"data":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "POST", path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "POST", "/sessions/"+id.NewSessionID().String()+"/input", `{"data":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	sessions.writeErr = &terminal.WriteError{SessionID: info.ID, Err: terminal.ErrClosed}
	w = do(router, "POST", path, `{"data":"x"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, terminal.CodeWriteFailed, decode(t, w)["code"])
}

func TestCloseSession(t *testing.T) {
	info := testInfo()
	sessions := newStubSessions(info)
	router := setupRouter(sessions)

	w := do(router, "DELETE", "/sessions/"+info.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, sessions.Len())

	w = do(router, "DELETE", "/sessions/"+info.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "DELETE", "/sessions/"+id.NewSessionID().String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{terminal.ErrNotFound, http.StatusNotFound},
		{terminal.ErrUnsupported, http.StatusNotImplemented},
		{terminal.ErrLimitReached, http.StatusTooManyRequests},
		{terminal.ErrShuttingDown, http.StatusServiceUnavailable},
		{&terminal.SpawnError{Command: "x", Err: errors.New("enoent")}, http.StatusUnprocessableEntity},
		{&terminal.WriteError{Err: terminal.ErrClosed}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
