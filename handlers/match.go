package handlers

import (
	"net/http"

	"fundimatch/models"
	"fundimatch/services/matching"
	"fundimatch/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// matchInput is the wire form of a match query. Lat/long are pointers so a
// missing coordinate is distinguishable from 0.
type matchInput struct {
	JobType string   `json:"jobType"`
	Lat     *float64 `json:"lat"`
	Long    *float64 `json:"long"`
	County  string   `json:"county"`
}

// MatchHandler serves POST /api/match.
func MatchHandler(c *gin.Context) {
	var input matchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req := models.MatchRequest{
		JobType: input.JobType,
		County:  input.County,
	}
	if input.Lat != nil && input.Long != nil {
		req.Lat = *input.Lat
		req.Long = *input.Long
		req.HasCoords = true
	}

	engine := engineFn()
	results, err := engine.Match(c.Request.Context(), req)
	if err != nil {
		if matching.IsInvalidInput(err) {
			utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
			return
		}
		utils.GetLogger().Error("Match failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Match failed", "An unexpected error occurred.")
		return
	}

	c.JSON(http.StatusOK, results)
}
