package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func serve(h *Handler, path string) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(&r.RouterGroup)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w.Code
}

func TestHealthChecks(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(NewHandler(stubPinger{}), "/health/live"))
	assert.Equal(t, http.StatusOK, serve(NewHandler(stubPinger{}), "/health/ready"))
	assert.Equal(t, http.StatusServiceUnavailable, serve(NewHandler(stubPinger{err: errors.New("down")}), "/health/ready"))
	assert.Equal(t, http.StatusOK, serve(NewHandler(stubPinger{err: errors.New("down")}), "/health/live"))
}
