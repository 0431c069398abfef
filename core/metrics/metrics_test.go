package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"upload-manager/core/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAttempt(t *testing.T) {
	m := metrics.New()

	m.ObserveAttempt("upload", nil)
	m.ObserveAttempt("upload", errors.New("boom"))
	m.ObserveAttempt("upload", errors.New("boom"))
	m.ObserveExhausted("upload")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageAttempts.WithLabelValues("upload", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StorageAttempts.WithLabelValues("upload", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageExhausted.WithLabelValues("upload")))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt("ls", nil)
		m.ObserveExhausted("ls")
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerAndMiddleware(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `upload_manager_http_requests_total{method="GET",status="200"} 1`)
}
