package controllers

import (
	"net/http"
	"strconv"

	"abstract-review-api/config"
	"abstract-review-api/services"

	"github.com/gin-gonic/gin"
)

var newCategoryDirectory = func() services.CategoryDirectory {
	return services.NewGormCategoryDirectory(config.DB)
}

// GetEventCategories handles GET /api/v1/events/:event_id/categories
func GetEventCategories(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil || eventID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	categories, err := newCategoryDirectory().ListCategories(eventID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
		"total":      len(categories),
	})
}
