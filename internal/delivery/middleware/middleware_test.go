package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"userstore/config"
	deliverycontext "userstore/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRequestIDMiddleware_Process(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "client id is kept", header: "req-123", wantSame: true},
		{name: "missing id is generated", header: ""},
		{name: "id with spaces is replaced", header: "bad id"},
		{name: "overlong id is replaced", header: strings.Repeat("x", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := echo.New()
			e.Use(NewRequestIDMiddleware(newBufferLogger(&buf)).Process)

			var ctxID string
			e.GET("/", func(c echo.Context) error {
				ctxID = deliverycontext.GetRequestIDFromContext(c.Request().Context())
				deliverycontext.GetLogger(c.Request().Context()).Info("inside handler")

				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Get(deliverycontext.HeaderXRequestID)
			require.NotEmpty(t, got)
			assert.Equal(t, got, ctxID)
			if tt.wantSame {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
			assert.Contains(t, buf.String(), `"request_id":"`+got+`"`)
		})
	}
}

func TestLoggerMiddleware_Handle(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		status  int
		wantLog bool
	}{
		{name: "success is quiet without debug", status: http.StatusOK},
		{name: "success is logged with debug", debug: true, status: http.StatusOK, wantLog: true},
		{name: "client error is logged", status: http.StatusNotFound, wantLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{}
			cfg.Env.Debug = tt.debug

			e := echo.New()
			e.Use(NewLoggerMiddleware(newBufferLogger(&buf), cfg).Handle)
			e.GET("/", func(c echo.Context) error {
				if tt.status >= 400 {
					return echo.NewHTTPError(tt.status)
				}

				return c.NoContent(tt.status)
			})

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.wantLog {
				assert.Contains(t, buf.String(), `"msg":"HTTP Request"`)
				assert.Contains(t, buf.String(), `"route":"/"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
