package integrity

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"upload-manager/core/middleware/apikey"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "secret"

func newTestApp(t *testing.T) (*fiber.App, *fixture) {
	t.Helper()
	f := newFixture(t)
	feature := NewFeature(f.db, f.media, testAPIKey, zap.NewNop())
	require.True(t, feature.IsEnabled())
	f.svc = feature.Service()

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, f
}

func get(t *testing.T, app *fiber.App, target string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(apikey.Header, testAPIKey)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}

func TestHandler_RequiresAPIKey(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/integrity/schema", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_StorageCheck(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := get(t, app, "/integrity/storage")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["exists"])

	status, body = get(t, app, "/integrity/storage?fix=true")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["exists"])

	_, body = get(t, app, "/integrity/storage")
	assert.Equal(t, true, body["exists"])
}

func TestHandler_SchemaCheck(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := get(t, app, "/integrity/schema")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["matched"])
}

func TestHandler_IntegrityCheck(t *testing.T) {
	app, f := newTestApp(t)
	f.seed(t)

	status, body := get(t, app, "/integrity")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "storage")
	assert.Contains(t, body, "schema")

	summary, ok := body["reconcile"].(map[string]interface{})
	require.True(t, ok, "%v", body["reconcile"])
	assert.Equal(t, float64(1), summary["missing_storage"])
	assert.Equal(t, float64(2), summary["missing_db"])
	assert.Equal(t, float64(0), summary["purge_actions"])
}

func TestHandler_Reconcile(t *testing.T) {
	t.Run("PurgeNeedsConfirm", func(t *testing.T) {
		app, f := newTestApp(t)
		f.seed(t)

		status, body := get(t, app, "/integrity/reconcile?purge=true")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(0), body["executed"])
		assert.Len(t, f.client.Keys("media"), 5)

		status, body = get(t, app, "/integrity/reconcile?purge=true&confirm=true")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(3), body["executed"])
		assert.Len(t, f.client.Keys("media"), 3)
	})

	t.Run("SingleKey", func(t *testing.T) {
		app, f := newTestApp(t)
		f.seed(t)

		status, body := get(t, app, "/integrity/reconcile?key=chris/uploads/a")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["db_present"])
		assert.Equal(t, true, body["storage_present"])
	})
}
