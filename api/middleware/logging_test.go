package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLoggedRouter(buf *bytes.Buffer, options ...LoggerOption) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := gin.New()
	r.Use(NewLogging(logger, options...))
	r.GET("/socios/:socio_id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/liveness", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestLoggingUsesRouteTemplate(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/socios/abc", nil))

	assert.Contains(t, buf.String(), `msg="GET /socios/:socio_id"`)
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "path=/socios/abc")
}

func TestLoggingServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf, WithRequestLoggingLevel("errors"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status=500")
}

func TestLoggingIgnoredPath(t *testing.T) {
	var buf bytes.Buffer
	r := newLoggedRouter(&buf, WithIgnorePath([]string{"/liveness"}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/liveness", nil))

	assert.Empty(t, buf.String())
}
