package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/infrastructure/data"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func emptyStore(t *testing.T) *data.Store {
	t.Helper()
	return data.NewStore(
		data.NewLoader(config.DataConfig{Dir: t.TempDir()}),
		config.DefaultScoringConfig(),
	)
}

func loadedStore(t *testing.T) *data.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, data.FileOntology),
		[]byte(`[{"id": "tomato", "label": "Tomato"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, data.FileRecipes),
		[]byte(`[{"title": "Salad", "ingredients": [{"id": "tomato"}]}]`), 0644))

	store := data.NewStore(
		data.NewLoader(config.DataConfig{Dir: dir}),
		config.DefaultScoringConfig(),
	)
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store
}

func get(r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHealthCheck(t *testing.T) {
	t.Run("with a loaded snapshot", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", HealthCheck("1.2.3", loadedStore(t)))

		w, body := get(r, "/health")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "1.2.3", body["version"])

		snap := body["snapshot"].(map[string]interface{})
		assert.NotEmpty(t, snap["generation"])
		assert.EqualValues(t, 1, snap["ontology_nodes"])
		assert.EqualValues(t, 1, snap["recipes"])
	})

	t.Run("degraded before the first load", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", HealthCheck("1.2.3", emptyStore(t)))

		w, body := get(r, "/health")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "degraded", body["status"])
		assert.Nil(t, body["snapshot"])
	})
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready when serving", func(t *testing.T) {
		r := gin.New()
		r.GET("/ready", ReadinessCheck(loadedStore(t)))

		w, body := get(r, "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("not ready without an engine", func(t *testing.T) {
		r := gin.New()
		r.GET("/ready", ReadinessCheck(emptyStore(t)))

		w, body := get(r, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", body["status"])
	})
}

func TestLivenessCheck(t *testing.T) {
	r := gin.New()
	r.GET("/live", LivenessCheck)

	w, body := get(r, "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", body["status"])
}
