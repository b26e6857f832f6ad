package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestIDMiddleware(func(c echo.Context) error {
		require.NotEmpty(t, c.Get("request_id"))
		require.NotNil(t, logger.FromContext(c.Request().Context()))
		return c.String(http.StatusOK, c.Get("request_id").(string))
	})

	t.Run("generates an id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		require.NotEmpty(t, rec.Header().Get(requestIDHeader))
		require.Equal(t, rec.Header().Get(requestIDHeader), rec.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
		require.Equal(t, "abc-123", rec.Body.String())
	})
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	handler := MetricsMiddleware(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))
	require.Error(t, err)
}
