package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-finder/internal/infrastructure/data"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the health check body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Snapshot  *SnapshotStatus        `json:"snapshot,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// SnapshotStatus describes the currently served data generation.
type SnapshotStatus struct {
	Generation    string    `json:"generation"`
	LoadedAt      time.Time `json:"loaded_at"`
	OntologyNodes int       `json:"ontology_nodes"`
	Recipes       int       `json:"recipes"`
}

// HealthCheck reports process and snapshot health.
func HealthCheck(version string, store *data.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   version,
			Runtime: map[string]interface{}{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]interface{}{
					"alloc":       m.Alloc,
					"total_alloc": m.TotalAlloc,
					"sys":         m.Sys,
					"num_gc":      m.NumGC,
				},
			},
		}

		if engine := store.Engine(); engine != nil {
			response.Snapshot = &SnapshotStatus{
				Generation:    engine.Generation,
				LoadedAt:      engine.LoadedAt,
				OntologyNodes: engine.Index.Len(),
				Recipes:       len(engine.Ranker.Recipes()),
			}
		} else {
			response.Status = "degraded"
		}

		c.JSON(http.StatusOK, response)
	}
}

// ReadinessCheck reports whether a snapshot is loaded and serving.
func ReadinessCheck(store *data.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store.Engine() == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	}
}

// LivenessCheck reports process liveness.
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
