package handlers

import (
	"net/http"

	"fundimatch/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves GET /health. A down signal store means matching runs
// on defaults, so it reports degraded rather than failing liveness.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	state := "ok"
	if !status.Redis && !status.CheckedAt.IsZero() {
		state = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   state,
		"signals":  status,
		"strategy": engineFn().Strategy(),
	})
}
