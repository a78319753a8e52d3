package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	// Two collectors must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()

	a.SessionOpened()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SessionsActive))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionsActive))
}

func TestSessionLifecycle(t *testing.T) {
	m := NewMetrics()

	m.SessionOpened()
	m.SessionOpened()
	m.SessionEnded("exited", time.Second)
	m.SessionOpenFailed("spawn")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsOpened))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEnded.WithLabelValues("exited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionOpenFailures.WithLabelValues("spawn")))
}

func TestByteCounters(t *testing.T) {
	m := NewMetrics()

	m.AddInput(8)
	m.AddOutput(3)
	m.AddOutput(4)

	assert.Equal(t, 8.0, testutil.ToFloat64(m.InputBytes))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.OutputBytes))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SessionOpened()
		m.SessionEnded("closed", time.Second)
		m.AddInput(1)
		m.AddOutput(1)
		m.IncDecodeErrors()
		m.IncWriteErrors()
		m.WSConnected(1)
		m.RecordWSFrame("output", "out")
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
	})
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/sess_abc", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/sessions/:id", "204")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.SessionOpened()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "termhost_sessions_active 1")
}
