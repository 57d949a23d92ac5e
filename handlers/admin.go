package handlers

import (
	"net/http"

	"fundimatch/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReloadHandler serves POST /api/admin/reload: rebuilds the engine from the
// dataset and swaps it in atomically. In-flight requests finish on the
// engine they started with.
func ReloadHandler(c *gin.Context) {
	if err := reloadFn(); err != nil {
		utils.GetLogger().Error("Engine reload failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Reload failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
