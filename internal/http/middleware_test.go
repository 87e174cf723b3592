package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lifesync-engine/internal/metrics"
)

func TestZapLoggerMiddlewareEscalatesLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger, metrics.NewCollector()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	cases := []struct {
		path string
		want zapcore.Level
	}{
		{"/ok", zap.InfoLevel},
		{"/bad", zap.WarnLevel},
		{"/boom", zap.ErrorLevel},
	}
	for i, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

		entries := logs.All()
		if len(entries) != i+1 {
			t.Fatalf("%s: entradas = %d, quiero %d", tc.path, len(entries), i+1)
		}
		entry := entries[i]
		if entry.Level != tc.want {
			t.Fatalf("%s: nivel = %s, quiero %s", tc.path, entry.Level, tc.want)
		}
		fields := entry.ContextMap()
		if fields["path"] != tc.path {
			t.Fatalf("%s: path en el log = %v", tc.path, fields["path"])
		}
		if fields["request_id"] == "" {
			t.Fatalf("%s: request_id vacio en el log", tc.path)
		}
	}
}
