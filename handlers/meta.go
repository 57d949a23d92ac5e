package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LocalesHandler serves GET /api/locales: the sorted set of known counties
// for UI population.
func LocalesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locales": engineFn().KnownLocales()})
}

// ProfessionsHandler serves GET /api/professions: the sorted skill
// vocabulary.
func ProfessionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"professions": engineFn().KnownProfessions()})
}
