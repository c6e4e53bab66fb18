package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"abstract-review-api/services"

	"github.com/gin-gonic/gin"
)

func abstractIDParam(c *gin.Context) (int, bool) {
	abstractID, err := strconv.Atoi(c.Param("id"))
	if err != nil || abstractID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid abstract ID"})
		return 0, false
	}
	return abstractID, true
}

// SubmitReview handles POST /api/v1/abstracts/:id/reviews
func SubmitReview(c *gin.Context) {
	abstractID, ok := abstractIDParam(c)
	if !ok {
		return
	}

	var req struct {
		ReviewerID int      `json:"reviewer_id"`
		Score      *float64 `json:"score"`
		Comments   string   `json:"comments"`
		Decision   string   `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	abstract, err := newReviewService().SubmitReview(caller, abstractID, services.ReviewInput{
		ReviewerID: req.ReviewerID,
		Score:      req.Score,
		Comments:   strings.TrimSpace(req.Comments),
		Decision:   strings.ToLower(strings.TrimSpace(req.Decision)),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Review submitted",
		"abstract": abstract,
	})
}

// ResubmitRevision handles POST /api/v1/abstracts/:id/resubmit
func ResubmitRevision(c *gin.Context) {
	abstractID, ok := abstractIDParam(c)
	if !ok {
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	abstract, err := newReviewService().ResubmitRevision(caller, abstractID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Revision resubmitted for review",
		"abstract": abstract,
	})
}

// AdminDecision handles POST /api/v1/abstracts/:id/decision
func AdminDecision(c *gin.Context) {
	abstractID, ok := abstractIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	if decision != "approve" && decision != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be either 'approve' or 'reject'"})
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	abstract, err := newReviewService().AdminDecide(caller, abstractID, decision, strings.TrimSpace(req.Reason))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Abstract approved"
	if decision == "reject" {
		message = "Abstract rejected"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  message,
		"abstract": abstract,
	})
}

// GetAbstract handles GET /api/v1/abstracts/:id
func GetAbstract(c *gin.Context) {
	abstractID, ok := abstractIDParam(c)
	if !ok {
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		return
	}

	abstract, err := newReviewService().GetAbstract(caller, abstractID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"abstract": abstract,
	})
}

// GetReviewProgress handles GET /api/v1/abstracts/:id/progress
func GetReviewProgress(c *gin.Context) {
	abstractID, ok := abstractIDParam(c)
	if !ok {
		return
	}

	progress, err := newReviewService().GetReviewProgress(abstractID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"progress": progress,
	})
}
