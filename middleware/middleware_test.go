package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/songquanpeng/model-compare/common/helper"
	"github.com/songquanpeng/model-compare/common/logger"
)

var errNotFound = errors.New("slot not found")

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		gmw.SetLogger(c, logger.Logger)
		c.Next()
	})
	engine.Use(handlers...)
	return engine
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestId(t *testing.T) {
	engine := newEngine(RequestId())
	var seen string
	engine.GET("/", func(c *gin.Context) {
		seen = c.GetString(helper.RequestIdKey)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, w.Header().Get(helper.RequestIdKey))
}

func TestPanicRecover(t *testing.T) {
	engine := newEngine(RequestId(), PanicRecover())
	engine.GET("/", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	require.Equal(t, false, body["success"])
	require.Contains(t, body["message"], "kaboom")
	require.Contains(t, body["message"], w.Header().Get(helper.RequestIdKey))
}

func TestAbortWithError(t *testing.T) {
	engine := newEngine()
	reached := false
	engine.GET("/", func(c *gin.Context) {
		AbortWithError(c, http.StatusNotFound, errNotFound)
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.False(t, reached)
	require.Equal(t, errNotFound.Error(), decode(t, w)["message"])
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name    string
		allowed string
		origin  string
		expect  string
	}{
		{"any-origin", "", "https://ui.example.com", "*"},
		{"listed-origin", "https://a.example.com, https://ui.example.com", "https://ui.example.com", "https://ui.example.com"},
		{"unlisted-origin", "https://a.example.com", "https://ui.example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newEngine(CORS(tc.allowed))
			engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			require.Equal(t, tc.expect, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestPrometheusMiddlewarePassesThrough(t *testing.T) {
	engine := newEngine(PrometheusMiddleware())
	engine.GET("/api/things/:id", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/things/42", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
