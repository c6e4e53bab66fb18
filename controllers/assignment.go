package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"abstract-review-api/services"

	"github.com/gin-gonic/gin"
)

// AssignReviewers handles POST /api/v1/abstracts/:id/reviewers
func AssignReviewers(c *gin.Context) {
	abstractID, ok := abstractIDParam(c)
	if !ok {
		return
	}

	var req struct {
		ReviewerIDs []int `json:"reviewer_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.ReviewerIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reviewer_ids must not be empty"})
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	result, err := newAssignmentService().AssignReviewers(caller, abstractID, req.ReviewerIDs)
	if err != nil {
		// All requested identities were invalid; report the failure with
		// the per-identity reasons attached.
		if errors.Is(err, services.ErrNoValidReviewers) && result != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "No valid reviewers to assign",
				"result":  result,
			})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reviewers assigned",
		"result":  result,
	})
}

// AutoAssignReviewers handles POST /api/v1/events/:event_id/auto-assign
func AutoAssignReviewers(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil || eventID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	count, err := newAssignmentService().AutoAssignReviewers(caller, eventID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "Auto-assignment completed",
		"abstracts_assigned": count,
	})
}
