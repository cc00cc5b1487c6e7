package graceful

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestDrainWaitsForInFlight(t *testing.T) {
	done := BeginRequest()
	go func() {
		time.Sleep(150 * time.Millisecond)
		done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, Drain(ctx))
	require.Zero(t, InFlight())
}

func TestDrainTimeout(t *testing.T) {
	done := BeginRequest()
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Drain(ctx), context.DeadlineExceeded)
}

func TestGinRequestTrackerRefusesWhileDraining(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinRequestTracker())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	SetDraining()
	t.Cleanup(func() { draining.Store(false) })

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
